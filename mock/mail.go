package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/quantonganh/eventex"
)

// MailService is a mock of eventex.MailService
type MailService struct {
	mock.Mock
}

// Send records the email and returns the configured error
func (m *MailService) Send(ctx context.Context, email *eventex.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Sent returns the emails passed to Send, in call order
func (m *MailService) Sent() []*eventex.Email {
	var emails []*eventex.Email
	for _, call := range m.Calls {
		if call.Method == "Send" {
			emails = append(emails, call.Arguments.Get(1).(*eventex.Email))
		}
	}
	return emails
}
