package smtp

import (
	"context"
	"mime"
	"strings"

	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/quantonganh/eventex"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type mailService struct {
	dialer dialer
	h      hermes.Hermes
}

// NewMailService returns a mail service that delivers through the configured SMTP server
func NewMailService(config *eventex.Config) eventex.MailService {
	return &mailService{
		dialer: gomail.NewDialer(config.SMTP.Host, config.SMTP.Port, config.SMTP.Username, config.SMTP.Password),
		h:      newHermes(config),
	}
}

// NewLogMailService returns a mail service that only logs what it would send
func NewLogMailService(config *eventex.Config, logger zerolog.Logger) eventex.MailService {
	return &mailService{
		dialer: &logDialer{logger: logger},
		h:      newHermes(config),
	}
}

func newHermes(config *eventex.Config) hermes.Hermes {
	return hermes.Hermes{
		Product: hermes.Product{
			Name: config.Mail.Product.Name,
			Link: config.Mail.Product.Link,
		},
	}
}

// Send delivers the email, giving up when ctx is done
func (ms *mailService) Send(ctx context.Context, email *eventex.Email) error {
	m, err := ms.newMessage(email)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- ms.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return errors.Errorf("failed to send mail to %v: %v", email.To, err)
		}
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "failed to send mail to %v", email.To)
	}
}

func (ms *mailService) newMessage(email *eventex.Email) (*gomail.Message, error) {
	if len(email.To) == 0 {
		return nil, errors.New("no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)

	if email.Subscription != nil {
		body, err := ms.h.GenerateHTML(confirmation(email.Subscription))
		if err != nil {
			return nil, errors.Errorf("failed to generate HTML email: %v", err)
		}
		m.AddAlternative("text/html", body)
	}

	return m, nil
}

func confirmation(req *eventex.SubscriptionRequest) hermes.Email {
	return hermes.Email{
		Body: hermes.Body{
			Greeting:  "Olá",
			Name:      req.Name,
			Signature: "Atenciosamente",
			Intros: []string{
				"Muito obrigado por se inscrever no Eventex.",
				"Estes foram os dados que você nos forneceu em sua inscrição:",
			},
			Dictionary: []hermes.Entry{
				{Key: "Nome", Value: req.Name},
				{Key: "CPF", Value: req.TaxID},
				{Key: "Email", Value: req.Email},
				{Key: "Telefone", Value: req.Phone},
			},
			Outros: []string{
				"Em até 48 horas úteis a nossa equipe entrará em contato com você para concluirmos a sua inscrição.",
			},
		},
	}
}

type logDialer struct {
	logger zerolog.Logger
}

func (d *logDialer) DialAndSend(msgs ...*gomail.Message) error {
	for _, m := range msgs {
		d.logger.Info().
			Strs("to", m.GetHeader("To")).
			Str("subject", decodeHeader(m.GetHeader("Subject"))).
			Msg("Email sent (log transport)")
	}
	return nil
}

// decodeHeader reverses the RFC 2047 encoding gomail applies to header values
func decodeHeader(values []string) string {
	var dec mime.WordDecoder
	decoded := make([]string, 0, len(values))
	for _, v := range values {
		if s, err := dec.DecodeHeader(v); err == nil {
			v = s
		}
		decoded = append(decoded, v)
	}
	return strings.Join(decoded, ", ")
}
