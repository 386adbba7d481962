package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/quantonganh/eventex"
)

type flashService struct {
	mu      sync.Mutex
	ttl     time.Duration
	flashes map[string]eventex.Flash
}

// NewFlashService returns a flash store kept in process memory
func NewFlashService(ttl time.Duration) eventex.FlashService {
	return &flashService{
		ttl:     ttl,
		flashes: make(map[string]eventex.Flash),
	}
}

func (fs *flashService) Set(_ context.Context, sessionID string, f *eventex.Flash) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.flashes[sessionID] = *f
	return nil
}

func (fs *flashService) Pop(_ context.Context, sessionID string) (*eventex.Flash, error) {
	fs.mu.Lock()
	f, ok := fs.flashes[sessionID]
	delete(fs.flashes, sessionID)
	fs.mu.Unlock()

	if !ok || f.Expired(fs.ttl, time.Now()) {
		return nil, nil
	}

	return &f, nil
}

func (fs *flashService) Purge(_ context.Context, before time.Time) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := 0
	for id, f := range fs.flashes {
		if f.CreatedAt.Before(before) {
			delete(fs.flashes, id)
			n++
		}
	}

	return n, nil
}
