package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"

	"github.com/quantonganh/eventex"
	"github.com/quantonganh/eventex/bolt"
	"github.com/quantonganh/eventex/http"
	"github.com/quantonganh/eventex/inmem"
	"github.com/quantonganh/eventex/redis"
	"github.com/quantonganh/eventex/ses"
	"github.com/quantonganh/eventex/smtp"
)

type app struct {
	config     *eventex.Config
	db         eventex.Database
	cron       *cron.Cron
	httpServer *http.Server
}

func newApp(config *eventex.Config) (*app, error) {
	httpServer, err := http.NewServer()
	if err != nil {
		return nil, err
	}

	a := &app{
		config:     config,
		cron:       cron.New(),
		httpServer: httpServer,
	}

	switch config.DB.Type {
	case "bolt":
		a.db = bolt.NewDB(config.DB.Path)
	case "redis":
		a.db = redis.NewDB(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	case "memory", "":
	default:
		return nil, errors.Errorf("unknown db type %q", config.DB.Type)
	}

	return a, nil
}

func (a *app) Run(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.Open(); err != nil {
			return err
		}
	}

	flashService := a.flashService()
	if _, err := a.cron.AddFunc(a.config.Session.PurgeSpec, func() {
		a.purge(flashService)
	}); err != nil {
		return errors.Wrapf(err, "invalid purge spec %q", a.config.Session.PurgeSpec)
	}
	a.cron.Start()

	mailService, err := a.mailService(ctx)
	if err != nil {
		return err
	}

	secret := a.config.Session.Secret
	if secret == "" {
		secret = uuid.NewV4().String()
		log.Warn().Msg("session.secret is not set, sessions will not survive a restart")
	}

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.Domain = a.config.HTTP.Domain
	a.httpServer.SessionSecret = secret
	a.httpServer.SecureCookies = a.config.Session.SecureOnly
	a.httpServer.MailTimeout = a.config.Mail.Timeout
	a.httpServer.MailService = mailService
	a.httpServer.FlashService = flashService

	return a.httpServer.Open()
}

func (a *app) flashService() eventex.FlashService {
	ttl := a.config.Session.FlashTTL
	switch db := a.db.(type) {
	case *bolt.DB:
		return bolt.NewFlashService(db, ttl)
	case *redis.DB:
		return redis.NewFlashService(db, ttl)
	default:
		return inmem.NewFlashService(ttl)
	}
}

func (a *app) mailService(ctx context.Context) (eventex.MailService, error) {
	switch a.config.Mail.Transport {
	case "smtp", "":
		return smtp.NewMailService(a.config), nil
	case "ses":
		return ses.NewMailService(ctx, a.config)
	case "log":
		return smtp.NewLogMailService(a.config, zerolog.New(os.Stdout).With().Timestamp().Logger()), nil
	default:
		return nil, errors.Errorf("unknown mail transport %q", a.config.Mail.Transport)
	}
}

func (a *app) purge(flashService eventex.FlashService) {
	before := time.Now().Add(-a.config.Session.FlashTTL)
	n, err := flashService.Purge(context.Background(), before)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge flash messages")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("Purged expired flash messages")
	}
}

func (a *app) Close() error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
