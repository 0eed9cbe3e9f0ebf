package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
)

// LocalCache is an in-process TTL cache for single-instance deployments.
type LocalCache struct {
	cache *gocache.Cache
}

// NewLocalCache expires entries after ttl and sweeps every 2*ttl.
func NewLocalCache(ttl time.Duration) *LocalCache {
	return &LocalCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *LocalCache) Get(_ context.Context, id domain.CitizenID) (*models.Registration, error) {
	v, ok := c.cache.Get(id.String())
	if !ok {
		return nil, ErrNotFound
	}
	reg, ok := v.(*models.Registration)
	if !ok {
		c.cache.Delete(id.String())
		return nil, ErrNotFound
	}
	return reg.Clone(), nil
}

func (c *LocalCache) Set(_ context.Context, reg *models.Registration) error {
	c.cache.SetDefault(reg.CitizenID.String(), reg.Clone())
	return nil
}

func (c *LocalCache) Delete(_ context.Context, id domain.CitizenID) error {
	c.cache.Delete(id.String())
	return nil
}

// Len reports the number of unexpired entries.
func (c *LocalCache) Len() int {
	return c.cache.ItemCount()
}
