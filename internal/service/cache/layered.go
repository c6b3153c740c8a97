package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "FinBoard/pkg/cache"
)

// LayeredBytesCache adapts a pkg/cache Service (memory + Redis) to the
// BytesCache interface used by the HTTP handlers.
type LayeredBytesCache struct {
	svc pkgcache.Service
}

func NewLayeredBytesCache(svc pkgcache.Service) *LayeredBytesCache {
	return &LayeredBytesCache{svc: svc}
}

func (c *LayeredBytesCache) GetBytes(key string) ([]byte, bool, error) {
	var b []byte
	err := c.svc.Get(context.Background(), key, &b)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (c *LayeredBytesCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return c.svc.Set(context.Background(), key, value, ttl)
}

func (c *LayeredBytesCache) InvalidatePrefix(prefix string) error {
	return c.svc.DeleteByPattern(context.Background(), pkgcache.BuildPattern(prefix))
}

var _ BytesCache = (*LayeredBytesCache)(nil)
