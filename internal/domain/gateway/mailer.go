package gateway

import "context"

// EmailMessage is an outgoing email. At least one of HTML or Text is set.
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers email and returns the relay's message id.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}
