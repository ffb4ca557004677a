package ports

import "context"

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailProvider defines the contract for sending emails
type EmailProvider interface {
	SendEmail(ctx context.Context, params EmailParams) error
}
