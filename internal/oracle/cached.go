package oracle

import (
	"context"
	"time"

	"github.com/hyperjump/kensho/internal/digest"
	"github.com/hyperjump/kensho/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// CachedVerifier memoizes verdicts by (context, claim) so duplicate claims in a run
// cost one oracle call.
type CachedVerifier struct {
	inner Verifier
	cache *gocache.Cache
}

// NewCachedVerifier wraps inner with a TTL cache.
func NewCachedVerifier(inner Verifier, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Verify returns a cached verdict when one exists, otherwise asks inner. Degraded
// verdicts are returned but not cached.
func (c *CachedVerifier) Verify(ctx context.Context, evidence, claim string) (models.Verdict, error) {
	key := digest.Key(evidence, claim)
	if v, ok := c.cache.Get(key); ok {
		return v.(models.Verdict), nil
	}
	v, err := c.inner.Verify(ctx, evidence, claim)
	if err != nil || v.Degraded {
		return v, err
	}
	c.cache.SetDefault(key, v)
	return v, nil
}

// Len returns the number of cached verdicts.
func (c *CachedVerifier) Len() int {
	return c.cache.ItemCount()
}
