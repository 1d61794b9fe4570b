// Package notify delivers account lifecycle emails, either directly or
// through a RabbitMQ queue drained by a worker.
package notify

import "fmt"

// Message is a plain-text email to a single recipient.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
}

// WelcomeMessage greets a newly registered user.
func WelcomeMessage(name, email string) Message {
	return Message{
		ToName:  name,
		ToEmail: email,
		Subject: "WELCOME!",
		Text:    fmt.Sprintf("Welcome to our Task Application, %s nice to see you here.", name),
	}
}

// FarewellMessage says goodbye to a user who deleted their account.
func FarewellMessage(name, email string) Message {
	return Message{
		ToName:  name,
		ToEmail: email,
		Subject: "Good Bye :(",
		Text: fmt.Sprintf("It was so nice to have you here %s, If there is anything that we could do "+
			"to make things better please don't hesitate to inform us.", name),
	}
}
