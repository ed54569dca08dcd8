package market

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// CachedSource memoizes a primary source and answers from a fallback when
// the primary fails. Fallback answers are not cached.
type CachedSource struct {
	primary  Source
	fallback Source
	cache    *cache.Cache
}

// NewCachedSource creates a CachedSource. fallback may be nil.
func NewCachedSource(primary, fallback Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		primary:  primary,
		fallback: fallback,
		cache:    cache.New(ttl, 2*ttl),
	}
}

// Multipliers implements Source.
func (s *CachedSource) Multipliers(ctx context.Context, industry string) (domain.Multipliers, error) {
	key := strings.ToUpper(strings.TrimSpace(industry))
	if v, ok := s.cache.Get(key); ok {
		return v.(domain.Multipliers), nil
	}

	m, err := s.primary.Multipliers(ctx, industry)
	if err != nil {
		if s.fallback == nil {
			return domain.Multipliers{}, err
		}
		slog.Warn("multiplier source failed, using fallback", "industry", industry, "error", err)
		return s.fallback.Multipliers(ctx, industry)
	}

	s.cache.SetDefault(key, m)
	return m, nil
}
