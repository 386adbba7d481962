package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/quantonganh/eventex"
)

const (
	shutdownTimeout    = 1 * time.Second
	defaultMailTimeout = 10 * time.Second
)

// Server represents HTTP server
type Server struct {
	ln     net.Listener
	server *http.Server
	router *mux.Router

	Addr   string
	Domain string

	// SessionSecret signs the session cookie
	SessionSecret string
	// SecureCookies marks cookies as HTTPS only
	SecureCookies bool
	// MailTimeout bounds a single confirmation email send
	MailTimeout time.Duration

	MailService  eventex.MailService
	FlashService eventex.FlashService
}

// NewServer create new HTTP server
func NewServer() (*Server, error) {
	return NewServerWithLogger(zerolog.New(os.Stdout).With().
		Timestamp().
		Logger())
}

// NewServerWithLogger creates new HTTP server logging requests to zlog
func NewServerWithLogger(zlog zerolog.Logger) (*Server, error) {
	s := &Server{
		server: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
		router: mux.NewRouter().StrictSlash(true),
	}

	s.router.Use(hlog.NewHandler(zlog))
	s.router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	s.router.Use(hlog.UserAgentHandler("user_agent"))
	s.router.Use(hlog.RefererHandler("referer"))
	s.router.Use(hlog.RequestIDHandler("req_id", "Request-Id"))

	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	s.router.Use(sentryHandler.Handle)
	s.router.Use(s.csrfHandler)

	s.server.Handler = http.HandlerFunc(s.serveHTTP)

	s.router.NotFoundHandler = http.HandlerFunc(s.notFoundHandler)
	s.router.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/", http.RedirectHandler(subscriptionPath, http.StatusFound)).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc(subscriptionPath, s.Error(s.subscribeHandler)).
		Methods(http.MethodGet, http.MethodHead, http.MethodPost)

	return s, nil
}

// Port returns server port
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// URL returns the base URL of the server. A configured domain is assumed to
// be served over HTTPS by a proxy in front of it.
func (s *Server) URL() string {
	if s.Domain != "" {
		return "https://" + s.Domain
	}
	return fmt.Sprintf("http://localhost:%d", s.Port())
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) mailTimeout() time.Duration {
	if s.MailTimeout <= 0 {
		return defaultMailTimeout
	}
	return s.MailTimeout
}

// Open opens a connection to HTTP server
func (s *Server) Open() (err error) {
	if s.MailService == nil || s.FlashService == nil {
		return errors.New("mail and flash services are required")
	}

	s.ln, err = net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Errorf("failed to listen to port %s: %v", s.Addr, err)
	}

	go func() {
		_ = s.server.Serve(s.ln)
	}()

	return nil
}

// Close shutdowns HTTP server
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
