package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// MenuCatalog is the read-through gateway to the menu.  Lookups hit Redis
// first and fall back to the database; the catalog degrades to plain
// database reads when Redis is unavailable.  Menu writes happen in an
// external admin system, so a short TTL is the consistency mechanism.
type MenuCatalog struct {
	repo  *repository.MenuItemRepo
	cache *redis.Client
	ttl   time.Duration
}

// NewMenuCatalog wires a MenuCatalog.  cache may be nil.
func NewMenuCatalog(repo *repository.MenuItemRepo, cache *redis.Client, ttl time.Duration) *MenuCatalog {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MenuCatalog{repo: repo, cache: cache, ttl: ttl}
}

func menuItemKey(id uint64) string { return fmt.Sprintf("menu:item:%d", id) }

// GetItem returns one menu item, served from cache when possible.
func (c *MenuCatalog) GetItem(ctx context.Context, id uint64) (*model.MenuItem, error) {
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, menuItemKey(id)).Bytes(); err == nil {
			var mi model.MenuItem
			if err := json.Unmarshal(raw, &mi); err == nil {
				return &mi, nil
			}
			// corrupt entry, fall through to the database
		}
	}
	mi, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if raw, err := json.Marshal(mi); err == nil {
			if err := c.cache.Set(ctx, menuItemKey(id), raw, c.ttl).Err(); err != nil {
				log.Printf("menu catalog: cache set failed: %v", err)
			}
		}
	}
	return mi, nil
}

// ListItems returns all active menu items straight from the database; the
// list endpoint is not hot enough to justify cache invalidation complexity.
func (c *MenuCatalog) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	return c.repo.List(ctx)
}
