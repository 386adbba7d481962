package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/quantonganh/eventex"
	"github.com/quantonganh/eventex/pkg/hash"
)

const (
	sessionCookieName = "sessionid"

	csrfCookieName = "csrftoken"
	csrfFormField  = "csrfmiddlewaretoken"
	csrfHeader     = "X-CSRFToken"
	csrfMaxAge     = 365 * 24 * 60 * 60

	maxFormMemory = 1 << 20
)

type csrfTokenKey struct{}

// sessionID returns the visitor session from a correctly signed cookie, if any
func (s *Server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	id, ok := hash.Verify(cookie.Value, s.SessionSecret)
	if !ok {
		return ""
	}

	return id
}

// ensureSession returns the visitor session, issuing a new cookie when there is none
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := s.sessionID(r); id != "" {
		return id, nil
	}

	id := uuid.NewV4().String()
	signed, err := hash.Sign(id, s.SessionSecret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}

// csrfHandler issues a CSRF cookie and rejects unsafe requests that don't echo it
// back in the csrfmiddlewaretoken form field or the X-CSRFToken header.
func (s *Server) csrfHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := csrfCookie(r)
		token := expected
		if token == "" {
			token = uuid.NewV4().String()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   csrfMaxAge,
				Secure:   s.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(csrfHeader)
		if submitted == "" {
			if err := parseForm(r); err == nil {
				submitted = r.PostForm.Get(csrfFormField)
			}
		}

		if !validCSRFToken(expected, submitted) {
			s.writeError(w, r, &eventex.Error{
				Code:    eventex.ErrForbidden,
				Message: csrfFailureMessage,
				Op:      "csrf",
				Err:     errors.New("CSRF token missing or incorrect"),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func csrfCookie(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}

	if _, err := uuid.FromString(cookie.Value); err != nil {
		return ""
	}

	return cookie.Value
}

func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

func validCSRFToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

// parseForm parses an urlencoded or multipart body. A malformed body leaves
// the request with no submitted values at all.
func parseForm(r *http.Request) error {
	err := r.ParseForm()
	if err == nil {
		err = r.ParseMultipartForm(maxFormMemory)
		if errors.Is(err, http.ErrNotMultipart) {
			err = nil
		}
	}

	if err != nil {
		r.Form, r.PostForm = url.Values{}, url.Values{}
		return errors.Wrap(err, "malformed form")
	}

	return nil
}
