package http

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/quantonganh/eventex"
)

const notFoundMessage = "Página não encontrada."

var codes = map[string]int{
	eventex.ErrForbidden:   http.StatusForbidden,
	eventex.ErrNotFound:    http.StatusNotFound,
	eventex.ErrUnavailable: http.StatusBadGateway,
	eventex.ErrInternal:    http.StatusInternalServerError,
}

type appHandler func(w http.ResponseWriter, r *http.Request) error

// Error turns the error returned by fn into an HTML error page
func (s *Server) Error(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// ErrorStatusCode returns the HTTP status for an application error code
func ErrorStatusCode(code string) int {
	if status, ok := codes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := ErrorStatusCode(eventex.ErrorCode(err)), eventex.ErrorMessage(err)

	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("Request rejected")
	}

	if err := render(w, status, errorTemplate, errorView{Status: status, Message: message}); err != nil {
		logger.Error().Err(err).Msg("Failed to render the error page")
		http.Error(w, message, status)
	}
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, &eventex.Error{
		Code:    eventex.ErrNotFound,
		Message: notFoundMessage,
		Op:      r.Method + " " + r.URL.Path,
	})
}
