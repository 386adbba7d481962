package http

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/quantonganh/eventex"
)

const subscriptionPath = "/inscricao/"

const (
	mailFailureMessage = "Não foi possível enviar o email de confirmação. Tente novamente em alguns minutos."
	csrfFailureMessage = "Falha na verificação CSRF. Recarregue a página e tente novamente."
)

func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) error {
	if r.Method == http.MethodPost {
		return s.handleSubscribe(w, r)
	}
	return s.handleSubscriptionForm(w, r)
}

func (s *Server) handleSubscriptionForm(w http.ResponseWriter, r *http.Request) error {
	view := formView{
		CSRFToken: csrfToken(r.Context()),
	}
	if r.Method == http.MethodGet {
		view.Flash = s.popFlash(r)
	}

	return render(w, http.StatusOK, formTemplate, view)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) error {
	logger := hlog.FromRequest(r)

	if err := parseForm(r); err != nil {
		logger.Warn().Err(err).Msg("Malformed subscription payload")
	}

	result := eventex.Validate(eventex.NewSubscriptionRequest(r.PostForm.Get))
	if !result.Valid() {
		logger.Info().Int("invalid_fields", len(result.Errors)).Msg("Rendering the form with errors")
		return render(w, http.StatusOK, formTemplate, formView{
			CSRFToken: csrfToken(r.Context()),
			Form:      result.Subscription,
			Errors:    result.Errors,
		})
	}

	email, err := eventex.NewConfirmationEmail(result.Subscription)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.mailTimeout())
	defer cancel()

	logger.Info().Msg("Sending confirmation email")
	if err := s.MailService.Send(ctx, email); err != nil {
		return &eventex.Error{
			Code:    eventex.ErrUnavailable,
			Message: mailFailureMessage,
			Op:      "subscribe",
			Err:     err,
		}
	}

	if err := s.setFlash(w, r, eventex.NewFlash(eventex.LevelSuccess, eventex.SubscribedMessage)); err != nil {
		logger.Error().Err(err).Msg("Failed to store the success message")
	}

	http.Redirect(w, r, subscriptionPath, http.StatusFound)
	return nil
}

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, f *eventex.Flash) error {
	sessionID, err := s.ensureSession(w, r)
	if err != nil {
		return err
	}

	return s.FlashService.Set(r.Context(), sessionID, f)
}

// popFlash reads and clears the pending flash of the visitor session
func (s *Server) popFlash(r *http.Request) *eventex.Flash {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		return nil
	}

	f, err := s.FlashService.Pop(r.Context(), sessionID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to read the flash message")
		return nil
	}

	return f
}
