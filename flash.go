package eventex

import (
	"context"
	"time"
)

// SubscribedMessage is flashed after a successful subscription
const SubscribedMessage = "Inscrição realizada com sucesso!"

// LevelSuccess is the level of the flash shown after subscribing
const LevelSuccess = "success"

// DefaultFlashTTL is how long a flash waits to be read
const DefaultFlashTTL = 5 * time.Minute

// Flash is a one-time notice shown on the next rendered page
type Flash struct {
	Level     string
	Message   string
	CreatedAt time.Time
}

// NewFlash returns a flash created now
func NewFlash(level, message string) *Flash {
	return &Flash{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// Expired reports whether the flash is older than ttl
func (f *Flash) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(f.CreatedAt) > ttl
}

// FlashService is the interface that wraps the one-shot per-session message store.
// Pop returns nil when nothing is pending for the session.
type FlashService interface {
	Set(ctx context.Context, sessionID string, f *Flash) error
	Pop(ctx context.Context, sessionID string) (*Flash, error)
	Purge(ctx context.Context, before time.Time) (int, error)
}
