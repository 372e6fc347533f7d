package maps

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/patrickmn/go-cache"
)

// CachedGeocoder memoizes successful lookups of another Geocoder.
// Failures are not cached.
type CachedGeocoder struct {
	next  Geocoder
	cache *cache.Cache
}

// NewCachedGeocoder wraps next with a TTL cache.
func NewCachedGeocoder(next Geocoder, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedGeocoder) Reverse(ctx context.Context, p geo.Point) (string, error) {
	return c.memo("rev:"+p.String(), func() (string, error) {
		return c.next.Reverse(ctx, p)
	})
}

func (c *CachedGeocoder) Normalize(ctx context.Context, place string) (string, error) {
	return c.memo("fwd:"+strings.ToLower(strings.TrimSpace(place)), func() (string, error) {
		return c.next.Normalize(ctx, place)
	})
}

func (c *CachedGeocoder) memo(key string, load func() (string, error)) (string, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}
	v, err := load()
	if err != nil {
		return "", err
	}
	c.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}
