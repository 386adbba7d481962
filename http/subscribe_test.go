package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantonganh/eventex"
	"github.com/quantonganh/eventex/mock"
)

func validData() url.Values {
	return url.Values{
		"name":  {"Leonardo Marcelino"},
		"cpf":   {"12345678901"},
		"email": {"leonardo.marcelino@gmail.com"},
		"phone": {"19-99258-6382"},
	}
}

func sendingMailService(err error) *mock.MailService {
	mailService := new(mock.MailService)
	mailService.On("Send", testifymock.Anything, testifymock.Anything).Return(err)
	return mailService
}

func TestSubscribeGet(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	w := c.get("/inscricao/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	m := parseMarkup(t, body)
	assert.Equal(t, 1, m.forms)
	assert.Equal(t, 6, m.inputs)
	assert.Equal(t, 3, m.types["text"])
	assert.Equal(t, 1, m.types["email"])
	assert.Equal(t, 1, m.types["submit"])
	assert.Equal(t, 0, m.errors)
	assert.Equal(t, []string{"csrfmiddlewaretoken", "name", "cpf", "email", "phone", ""}, m.names)

	assert.Equal(t, 1, strings.Count(body, "<form"))
	assert.Equal(t, 6, strings.Count(body, "<input"))
	assert.Equal(t, 3, strings.Count(body, `type="text"`))
	assert.Equal(t, 1, strings.Count(body, `type="email"`))
	assert.Equal(t, 1, strings.Count(body, `type="submit"`))
	assert.Contains(t, body, "csrfmiddlewaretoken")
	assert.Equal(t, c.cookies[csrfCookieName].Value, inputValue(t, body, csrfFormField))

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribeGetIsIdempotent(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	for i := 0; i < 3; i++ {
		w := c.get("/inscricao/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, parseMarkup(t, w.Body.String()).errors)
		assert.NotContains(t, w.Body.String(), eventex.SubscribedMessage)
	}

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribePostValid(t *testing.T) {
	t.Parallel()

	mailService := sendingMailService(nil)
	c := newClient(t, newServer(t, mailService, nil))

	w := c.post("/inscricao/", validData())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inscricao/", w.Header().Get("Location"))

	sent := mailService.Sent()
	require.Len(t, sent, 1)

	email := sent[0]
	assert.Equal(t, "Confirmação de inscrição", email.Subject)
	assert.Equal(t, "contato@eventex.com.br", email.From)
	assert.Equal(t, []string{"contato@eventex.com.br", "leonardo.marcelino@gmail.com"}, email.To)
	for _, content := range []string{
		"Leonardo Marcelino",
		"12345678901",
		"leonardo.marcelino@gmail.com",
		"19-99258-6382",
	} {
		assert.Contains(t, email.Body, content)
	}
}

func TestSubscribePostSendsWithDeadline(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	mailService.On("Send", testifymock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), testifymock.Anything).Return(nil).Once()
	c := newClient(t, newServer(t, mailService, nil))

	assert.Equal(t, http.StatusFound, c.post("/inscricao/", validData()).Code)
	mailService.AssertExpectations(t)
}

func TestSubscribePostEmpty(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	w := c.post("/inscricao/", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)

	m := parseMarkup(t, w.Body.String())
	assert.Equal(t, 1, m.forms)
	assert.Equal(t, 6, m.inputs)
	assert.Equal(t, 4, m.errors)
	assert.Contains(t, w.Body.String(), "Este campo é obrigatório.")

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribePostMissingField(t *testing.T) {
	t.Parallel()

	for _, field := range eventex.Fields {
		field := field
		t.Run(field, func(t *testing.T) {
			mailService := new(mock.MailService)
			c := newClient(t, newServer(t, mailService, nil))

			data := validData()
			data.Del(field)

			w := c.post("/inscricao/", data)
			assert.Equal(t, http.StatusOK, w.Code)

			body := w.Body.String()
			assert.Equal(t, 1, parseMarkup(t, body).errors)
			for _, other := range eventex.Fields {
				if other != field {
					assert.Equal(t, data.Get(other), inputValue(t, body, other))
				}
			}

			mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
		})
	}
}

func TestSubscribePostInvalidEmail(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	data := validData()
	data.Set("email", "foo@bar")

	w := c.post("/inscricao/", data)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, parseMarkup(t, w.Body.String()).errors)
	assert.Contains(t, w.Body.String(), "Informe um endereço de email válido.")
	assert.Equal(t, "foo@bar", inputValue(t, w.Body.String(), "email"))

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribePostMalformed(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	body := validData().Encode() + "&junk=%zz"
	req, err := http.NewRequest(http.MethodPost, "/inscricao/", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(csrfHeader, c.csrfToken())

	w := c.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	m := parseMarkup(t, w.Body.String())
	assert.Equal(t, 4, m.errors)
	assert.Empty(t, inputValue(t, w.Body.String(), eventex.FieldTaxID))

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribePostMalformedWithFormToken(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))

	data := validData()
	data.Set(csrfFormField, c.csrfToken())
	req, err := http.NewRequest(http.MethodPost, "/inscricao/", strings.NewReader(data.Encode()+"&junk=%zz"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := c.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribeSuccessMessage(t *testing.T) {
	t.Parallel()

	c := newClient(t, newServer(t, sendingMailService(nil), nil))

	w := c.follow(c.post("/inscricao/", validData()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), "Inscrição realizada com sucesso!"))

	w = c.get("/inscricao/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Inscrição realizada com sucesso!")
}

func TestSubscribeSuccessMessageIsPerSession(t *testing.T) {
	t.Parallel()

	s := newServer(t, sendingMailService(nil), nil)
	visitor, other := newClient(t, s), newClient(t, s)

	assert.Equal(t, http.StatusFound, visitor.post("/inscricao/", validData()).Code)
	assert.NotContains(t, other.get("/inscricao/").Body.String(), eventex.SubscribedMessage)
	assert.Contains(t, visitor.get("/inscricao/").Body.String(), eventex.SubscribedMessage)
}

func TestSubscribeMailFailure(t *testing.T) {
	t.Parallel()

	c := newClient(t, newServer(t, sendingMailService(errors.New("smtp: connection refused")), nil))

	w := c.post("/inscricao/", validData())
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), eventex.SubscribedMessage)
	assert.Contains(t, w.Body.String(), "Não foi possível enviar o email de confirmação.")

	w = c.get("/inscricao/")
	assert.NotContains(t, w.Body.String(), eventex.SubscribedMessage)
}

func TestSubscribeFlashStoreFailure(t *testing.T) {
	t.Parallel()

	flashService := new(mock.FlashService)
	flashService.On("Set", testifymock.Anything, testifymock.Anything, testifymock.Anything).Return(errors.New("bolt: database not open"))
	mailService := sendingMailService(nil)
	c := newClient(t, newServer(t, mailService, flashService))

	w := c.post("/inscricao/", validData())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Len(t, mailService.Sent(), 1)
	flashService.AssertExpectations(t)
}

func TestSubscribeRejectsMissingCSRFToken(t *testing.T) {
	t.Parallel()

	mailService := new(mock.MailService)
	c := newClient(t, newServer(t, mailService, nil))
	c.get("/inscricao/")

	req, err := http.NewRequest(http.MethodPost, "/inscricao/", strings.NewReader(validData().Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := c.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	data := validData()
	data.Set(csrfFormField, "4d5c1a9e-0000-4000-8000-000000000000")
	req, err = http.NewRequest(http.MethodPost, "/inscricao/", strings.NewReader(data.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w = c.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	mailService.AssertNotCalled(t, "Send", testifymock.Anything, testifymock.Anything)
}

func TestSubscribeIgnoresTamperedSession(t *testing.T) {
	t.Parallel()

	s := newServer(t, sendingMailService(nil), nil)
	c := newClient(t, s)

	assert.Equal(t, http.StatusFound, c.post("/inscricao/", validData()).Code)

	session := c.cookies[sessionCookieName]
	require.NotNil(t, session)
	id, _, _ := strings.Cut(session.Value, ".")

	forged := newClient(t, s)
	forged.cookies[sessionCookieName] = &http.Cookie{Name: sessionCookieName, Value: id + ".forged"}
	assert.NotContains(t, forged.get("/inscricao/").Body.String(), eventex.SubscribedMessage)

	assert.Contains(t, c.get("/inscricao/").Body.String(), eventex.SubscribedMessage)
}

func TestSubscribeHeadKeepsFlash(t *testing.T) {
	t.Parallel()

	c := newClient(t, newServer(t, sendingMailService(nil), nil))
	assert.Equal(t, http.StatusFound, c.post("/inscricao/", validData()).Code)

	req, err := http.NewRequest(http.MethodHead, "/inscricao/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, c.do(req).Code)

	assert.Contains(t, c.get("/inscricao/").Body.String(), eventex.SubscribedMessage)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	c := newClient(t, newServer(t, nil, nil))

	w := c.get("/inscricao")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/inscricao/", w.Header().Get("Location"))

	w = c.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inscricao/", w.Header().Get("Location"))

	w = c.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	req, err := http.NewRequest(http.MethodPut, "/inscricao/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, c.do(req).Code)

	w = c.get("/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Página não encontrada.")
}
