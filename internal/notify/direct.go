package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultSendTimeout = 10 * time.Second

// DirectNotifier sends account emails from background goroutines.
type DirectNotifier struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDirectNotifier creates a DirectNotifier. A non-positive timeout uses
// a 10 second default.
func NewDirectNotifier(mailer Mailer, timeout time.Duration) *DirectNotifier {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &DirectNotifier{mailer: mailer, timeout: timeout}
}

func (n *DirectNotifier) Welcome(name, email string)  { n.dispatch(WelcomeMessage(name, email)) }
func (n *DirectNotifier) Farewell(name, email string) { n.dispatch(FarewellMessage(name, email)) }

// Wait blocks until every in-flight email has been attempted.
func (n *DirectNotifier) Wait() { n.wg.Wait() }

func (n *DirectNotifier) dispatch(msg Message) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.mailer.Send(ctx, msg); err != nil {
			log.Error().Err(err).Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("failed to send account email")
			return
		}
		log.Info().Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("account email sent")
	}()
}
