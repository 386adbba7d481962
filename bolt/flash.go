package bolt

import (
	"context"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

	"github.com/quantonganh/eventex"
)

type flash struct {
	SessionID string `storm:"id"`
	Level     string
	Message   string
	CreatedAt time.Time
}

type flashService struct {
	db  *DB
	ttl time.Duration
}

// NewFlashService returns a flash store kept in the bolt database.
// Flashes older than ttl are discarded on read.
func NewFlashService(db *DB, ttl time.Duration) eventex.FlashService {
	return &flashService{
		db:  db,
		ttl: ttl,
	}
}

// Set stores f for the session, replacing any pending flash
func (fs *flashService) Set(_ context.Context, sessionID string, f *eventex.Flash) error {
	if err := fs.db.stormDB.Save(&flash{
		SessionID: sessionID,
		Level:     f.Level,
		Message:   f.Message,
		CreatedAt: f.CreatedAt,
	}); err != nil {
		return errors.Errorf("failed to save flash: %v", err)
	}

	return nil
}

// Pop returns the pending flash of the session and deletes it
func (fs *flashService) Pop(_ context.Context, sessionID string) (*eventex.Flash, error) {
	var f flash
	if err := fs.db.stormDB.One("SessionID", sessionID, &f); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find flash: %v", err)
	}

	if err := fs.db.stormDB.DeleteStruct(&f); err != nil {
		return nil, errors.Errorf("failed to delete flash: %v", err)
	}

	popped := &eventex.Flash{
		Level:     f.Level,
		Message:   f.Message,
		CreatedAt: f.CreatedAt,
	}
	if popped.Expired(fs.ttl, time.Now()) {
		return nil, nil
	}

	return popped, nil
}

// Purge deletes flashes created before the given time
func (fs *flashService) Purge(_ context.Context, before time.Time) (int, error) {
	var flashes []flash
	if err := fs.db.stormDB.All(&flashes); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return 0, nil
		}
		return 0, errors.Errorf("failed to list flashes: %v", err)
	}

	n := 0
	for i := range flashes {
		if !flashes[i].CreatedAt.Before(before) {
			continue
		}
		if err := fs.db.stormDB.DeleteStruct(&flashes[i]); err != nil {
			return n, errors.Errorf("failed to delete flash: %v", err)
		}
		n++
	}

	return n, nil
}
