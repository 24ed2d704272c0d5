// Package kv is the client's persistent key/value storage. It plays the role
// browser local storage plays for the web client: session token, user
// profile, chat histories and the greeting timestamp all live here.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Get for a key that is not stored.
var ErrNotFound = errors.New("key not found")

// Store is implemented by every backend. Each operation is atomic on its own;
// there are no multi-key transactions.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Keys lists stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	Path    string // file and sqlite
	Key     string // hex encoded secretbox key, file only

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	Logger zerolog.Logger
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	log := opts.Logger.With().Str("component", "kv").Str("backend", opts.Backend).Logger()

	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		var fileOpts []FileOption
		if opts.Key != "" {
			key, err := ParseKey(opts.Key)
			if err != nil {
				return nil, err
			}
			fileOpts = append(fileOpts, WithSealing(key))
		}
		return NewFileStore(opts.Path, fileOpts...)
	case BackendSQLite:
		s, err := NewSQLiteStore(ctx, opts.Path, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
