package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/quantonganh/eventex"
)

// FlashService is a mock of eventex.FlashService
type FlashService struct {
	mock.Mock
}

// Set records the flash and returns the configured error
func (m *FlashService) Set(ctx context.Context, sessionID string, f *eventex.Flash) error {
	args := m.Called(ctx, sessionID, f)
	return args.Error(0)
}

// Pop returns the configured flash and error
func (m *FlashService) Pop(ctx context.Context, sessionID string) (*eventex.Flash, error) {
	args := m.Called(ctx, sessionID)
	f, _ := args.Get(0).(*eventex.Flash)
	return f, args.Error(1)
}

// Purge returns the configured count and error
func (m *FlashService) Purge(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Int(0), args.Error(1)
}
