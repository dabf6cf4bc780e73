package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 15 * time.Minute
	maxJitterMins = 5
)

// setIfNewer writes ARGV[1] unless the stored entry carries a version at
// least ARGV[2]. Unreadable entries are overwritten.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, entry = pcall(cjson.decode, cur)
  if ok and type(entry) == 'table' and tonumber(entry.version) ~= nil
    and tonumber(entry.version) >= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// entry is the stored form. Version lives outside the cart because the cart
// JSON is also the API shape, which does not expose it.
type entry struct {
	Version int64        `json:"version"`
	Cart    *domain.Cart `json:"cart"`
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: defaultTTL,
	}
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal cached cart: %w", err)
	}
	if e.Cart == nil {
		return nil, fmt.Errorf("unmarshal cached cart: entry without cart")
	}
	e.Cart.Version = e.Version
	return e.Cart, nil
}

// Set stores the cart with a jittered TTL so entries written together do not
// expire together. Older versions than the cached one are dropped silently.
func (r *RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	data, err := json.Marshal(entry{Version: cart.Version, Cart: cart})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(maxJitterMins))*time.Minute
	err = setIfNewer.Run(ctx, r.client, []string{cacheKey(userID)}, data, cart.Version, ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return "cart:" + userID
}
