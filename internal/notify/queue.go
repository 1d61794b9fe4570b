package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskapp/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// Account event types carried on the queue.
const (
	EventAccountCreated = "account.created"
	EventAccountDeleted = "account.deleted"
)

// AccountEvent is the queued payload for an account notification.
type AccountEvent struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Publisher puts a message body on the notification queue.
type Publisher interface {
	Publish(body []byte) error
}

// QueueNotifier publishes account events for a Worker to deliver.
type QueueNotifier struct {
	publisher Publisher
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(publisher Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: publisher}
}

func (n *QueueNotifier) Welcome(name, email string) {
	n.publish(AccountEvent{Type: EventAccountCreated, Name: name, Email: email})
}

func (n *QueueNotifier) Farewell(name, email string) {
	n.publish(AccountEvent{Type: EventAccountDeleted, Name: name, Email: email})
}

func (n *QueueNotifier) publish(event AccountEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("failed to marshal account event")
		return
	}
	if err := n.publisher.Publish(body); err != nil {
		log.Error().Err(err).Str("type", event.Type).Str("to", event.Email).Msg("failed to publish account event")
		return
	}
	log.Debug().Str("type", event.Type).Str("to", event.Email).Msg("account event published")
}

// Worker turns queued account events into emails.
type Worker struct {
	mailer  Mailer
	timeout time.Duration
}

// NewWorker creates a Worker sending through mailer.
func NewWorker(mailer Mailer, timeout time.Duration) *Worker {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Worker{mailer: mailer, timeout: timeout}
}

// Handle processes one queued event. Malformed events and emails the
// provider refused are reported as rabbitmq.ErrUnprocessable so they are
// dropped rather than retried.
func (w *Worker) Handle(body []byte) error {
	var event AccountEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", rabbitmq.ErrUnprocessable, err)
	}

	var msg Message
	switch event.Type {
	case EventAccountCreated:
		msg = WelcomeMessage(event.Name, event.Email)
	case EventAccountDeleted:
		msg = FarewellMessage(event.Name, event.Email)
	default:
		return fmt.Errorf("%w: unknown event type %q", rabbitmq.ErrUnprocessable, event.Type)
	}
	if event.Email == "" {
		return fmt.Errorf("%w: event has no recipient", rabbitmq.ErrUnprocessable)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, ErrRejected) {
			return fmt.Errorf("%w: %v", rabbitmq.ErrUnprocessable, err)
		}
		return err
	}
	return nil
}

// HandleDelivery adapts Handle to rabbitmq.Client.Consume.
func (w *Worker) HandleDelivery(msg amqp.Delivery) error {
	return w.Handle(msg.Body)
}
