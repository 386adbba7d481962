package eventex

import (
	"context"

	"github.com/osteele/liquid"
	"github.com/pkg/errors"
)

// Confirmation email envelope
const (
	ConfirmationSubject = "Confirmação de inscrição"
	ContactAddress      = "contato@eventex.com.br"
)

const confirmationTemplate = `Olá! Tudo bem?

Muito obrigado por se inscrever no Eventex.

Estes foram os dados que você nos forneceu em sua inscrição:

Nome: {{ name }}
CPF: {{ cpf }}
Email: {{ email }}
Telefone: {{ phone }}

Em até 48 horas úteis a nossa equipe entrará em contato com você para concluirmos a sua inscrição.

Atenciosamente,
--
Eventex
`

var confirmationBody *liquid.Template

func init() {
	tpl, err := liquid.NewEngine().ParseString(confirmationTemplate)
	if err != nil {
		panic(err)
	}
	confirmationBody = tpl
}

// MailService is the interface that wraps the outbound email transport
type MailService interface {
	Send(ctx context.Context, email *Email) error
}

// Email represents an outgoing plain text message.
// To is delivered in order.
type Email struct {
	Subject string
	From    string
	To      []string
	Body    string

	// Subscription is the data the message was built from, if any
	Subscription *SubscriptionRequest
}

// NewConfirmationEmail builds the confirmation sent after a valid subscription
func NewConfirmationEmail(req SubscriptionRequest) (*Email, error) {
	body, err := confirmationBody.RenderString(liquid.Bindings{
		FieldName:  req.Name,
		FieldTaxID: req.TaxID,
		FieldEmail: req.Email,
		FieldPhone: req.Phone,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render confirmation email")
	}

	return &Email{
		Subject:      ConfirmationSubject,
		From:         ContactAddress,
		To:           []string{ContactAddress, req.Email},
		Body:         body,
		Subscription: &req,
	}, nil
}
