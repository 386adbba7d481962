package redis

import (
	"context"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// DB represents a redis connection
type DB struct {
	opts   *goredis.Options
	client *goredis.Client
}

// NewDB returns new redis database
func NewDB(addr, password string, db int) *DB {
	return &DB{
		opts: &goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		},
	}
}

// Open connects to redis and checks the connection
func (db *DB) Open() error {
	if db.opts.Addr == "" {
		return errors.New("addr required")
	}

	if db.client != nil {
		return nil
	}

	client := goredis.NewClient(db.opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return errors.Wrapf(err, "failed to ping %s", db.opts.Addr)
	}
	db.client = client

	return nil
}

// Close closes the connection
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}

	return db.client.Close()
}
