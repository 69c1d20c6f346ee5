// Package cache is an optional redis read cache for the service catalog.
// A nil client disables caching entirely; every error is a cache miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"autocare/internal/domain"
)

const (
	servicesKey = "autocare:services"
	servicesTTL = 30 * time.Second
)

type Catalog struct {
	rdb *redis.Client
}

// New builds the catalog cache. Connection failure returns a disabled
// cache rather than an error; callers degrade to direct API reads.
func New(addr string) *Catalog {
	if addr == "" {
		return &Catalog{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return &Catalog{}
	}
	return &Catalog{rdb: rdb}
}

func (c *Catalog) Enabled() bool { return c != nil && c.rdb != nil }

func (c *Catalog) GetServices(ctx context.Context) ([]domain.Service, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, servicesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var out []domain.Service
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *Catalog) SetServices(ctx context.Context, svcs []domain.Service) {
	if !c.Enabled() {
		return
	}
	b, err := json.Marshal(svcs)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, servicesKey, b, servicesTTL).Err()
}

// Invalidate drops the cached catalog after a mutation.
func (c *Catalog) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	_ = c.rdb.Del(ctx, servicesKey).Err()
}
