package eventex

import "time"

// Config represents the main config
type Config struct {
	DB struct {
		Type string // "memory", "bolt" or "redis"
		Path string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Addr   string
		Domain string
	}

	Mail struct {
		Transport string // "smtp", "ses" or "log"
		Timeout   time.Duration

		Product struct {
			Name string
			Link string
		}
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	SES struct {
		Region    string
		AccessKey string
		SecretKey string
	}

	Session struct {
		Secret     string
		FlashTTL   time.Duration
		PurgeSpec  string
		SecureOnly bool
	}

	Sentry struct {
		DSN string
	}
}
