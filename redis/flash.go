package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/quantonganh/eventex"
)

const keyPrefix = "eventex:flash:"

type flashService struct {
	db  *DB
	ttl time.Duration
}

// NewFlashService returns a flash store whose entries expire in redis after ttl
func NewFlashService(db *DB, ttl time.Duration) eventex.FlashService {
	return &flashService{
		db:  db,
		ttl: ttl,
	}
}

func (fs *flashService) Set(ctx context.Context, sessionID string, f *eventex.Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "failed to encode flash")
	}

	if err := fs.db.client.Set(ctx, keyPrefix+sessionID, data, fs.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save flash")
	}

	return nil
}

func (fs *flashService) Pop(ctx context.Context, sessionID string) (*eventex.Flash, error) {
	data, err := fs.db.client.GetDel(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to pop flash")
	}

	var f eventex.Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to decode flash")
	}

	if f.Expired(fs.ttl, time.Now()) {
		return nil, nil
	}

	return &f, nil
}

// Purge deletes flashes created before the given time. Redis expires entries
// on its own when a ttl is set, so this only matters for entries stored without one.
func (fs *flashService) Purge(ctx context.Context, before time.Time) (int, error) {
	n := 0
	iter := fs.db.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := fs.db.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return n, errors.Wrapf(err, "failed to read %s", key)
		}

		var f eventex.Flash
		if err := json.Unmarshal(data, &f); err != nil || f.CreatedAt.Before(before) {
			if err := fs.db.client.Del(ctx, key).Err(); err != nil {
				return n, errors.Wrapf(err, "failed to delete %s", key)
			}
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return n, errors.Wrap(err, "failed to scan flashes")
	}

	return n, nil
}
