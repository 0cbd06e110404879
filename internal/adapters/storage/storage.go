// Package storage holds the chat history and user directory backends:
// memory, MongoDB, PostgreSQL, plus a Redis cache for user lookups.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Clubs/internal/config"
	"github.com/dkeye/Clubs/internal/core"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	connectTimeout = 5 * time.Second
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Backend is what the server needs from storage.
type Backend struct {
	Chat  core.ChatStore
	Users core.UserDirectory

	closers []func(context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the configured backend. An unreachable MongoDB falls back to
// memory so the server still runs in development.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	switch cfg.Storage.Driver {
	case "mongo":
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		m, err := ConnectMongo(cctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			log.Error().Err(err).Str("module", "storage").Msg("mongo connection failed, using in-memory storage")
			mem := NewMemory()
			b.Chat, b.Users = mem, mem
			break
		}
		b.Chat, b.Users = m, m
		b.closers = append(b.closers, m.Close)
		log.Info().Str("module", "storage").Str("db", cfg.Storage.MongoDatabase).Msg("connected to mongo")
	case "postgres":
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		pg, err := ConnectPostgres(cctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(cctx); err != nil {
			pg.Close(ctx)
			return nil, fmt.Errorf("postgres: ensure schema: %w", err)
		}
		b.Chat, b.Users = pg, pg
		b.closers = append(b.closers, pg.Close)
		log.Info().Str("module", "storage").Msg("connected to postgres")
	default:
		mem := NewMemory()
		b.Chat, b.Users = mem, mem
		log.Warn().Str("module", "storage").Msg("using in-memory storage")
	}

	if cfg.Redis.URL != "" {
		cached, err := NewCachedUsers(ctx, cfg.Redis.URL, b.Users, cfg.Redis.UserTTL)
		if err != nil {
			log.Error().Err(err).Str("module", "storage").Msg("redis unavailable, user cache disabled")
		} else {
			b.Users = cached
			b.closers = append(b.closers, cached.Close)
			log.Info().Str("module", "storage").Dur("ttl", cfg.Redis.UserTTL).Msg("user cache enabled")
		}
	}
	return b, nil
}
