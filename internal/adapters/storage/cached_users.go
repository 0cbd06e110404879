package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userKeyPrefix = "clubs:user:"

// CachedUsers is a read-through Redis cache in front of a UserDirectory.
// Redis errors are logged and the lookup goes to the backing directory.
type CachedUsers struct {
	client *redis.Client
	next   core.UserDirectory
	ttl    time.Duration
}

var _ core.UserDirectory = (*CachedUsers)(nil)

func NewCachedUsers(ctx context.Context, url string, next core.UserDirectory, ttl time.Duration) (*CachedUsers, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return newCachedUsers(c, next, ttl), nil
}

func newCachedUsers(c *redis.Client, next core.UserDirectory, ttl time.Duration) *CachedUsers {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUsers{client: c, next: next, ttl: ttl}
}

func (c *CachedUsers) GetUser(ctx context.Context, id string) (*domain.User, error) {
	key := userKey(id)
	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if u, ok := decodeCachedUser(raw, id); ok {
			return u, nil
		}
		log.Warn().Str("module", "storage.cache").Str("key", key).Msg("bad cached user, refetching")
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("module", "storage.cache").Msg("redis get failed")
	}

	u, err := c.next.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, jerr := json.Marshal(u); jerr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			log.Warn().Err(serr).Str("module", "storage.cache").Msg("redis set failed")
		}
	}
	return u, nil
}

func userKey(id string) string { return userKeyPrefix + id }

// decodeCachedUser rejects entries that do not parse or belong to another id.
func decodeCachedUser(raw, id string) (*domain.User, bool) {
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID != id {
		return nil, false
	}
	return &u, true
}

func (c *CachedUsers) Close(context.Context) error {
	return c.client.Close()
}
