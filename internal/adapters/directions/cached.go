package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/core/ports"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// CachedGateway wraps a DirectionsGateway with read-through caching. Only
// followed paths are cached; ErrNoRoute and transport failures always go
// back to the provider. Cache trouble degrades to a plain lookup.
type CachedGateway struct {
	next  ports.DirectionsGateway
	cache ports.CacheService
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedGateway decorates next with cache.
func NewCachedGateway(next ports.DirectionsGateway, cache ports.CacheService, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   slog.Default(),
	}
}

// cacheKey identifies a lookup. Coordinates go in at full precision: the
// same drag rarely lands on the same spot twice, but deletes and re-adds
// between the same markers do, and those are the expensive repeats.
func cacheKey(req domain.PathRequest) string {
	return fmt.Sprintf("path:%s:%g:%.7f,%.7f:%.7f,%.7f:%t:%t",
		req.Profile, req.Bias,
		req.Start.Lat, req.Start.Lon,
		req.End.Lat, req.End.Lon,
		req.StartDisjoint, req.EndDisjoint,
	)
}

// RequestPath serves from cache when possible.
func (g *CachedGateway) RequestPath(ctx context.Context, req domain.PathRequest) (*domain.Path, error) {
	if !req.Attempt {
		return g.next.RequestPath(ctx, req)
	}

	key := cacheKey(req)
	if data, err := g.cache.Get(ctx, key); err == nil && len(data) > 0 {
		var path domain.Path
		if err := json.Unmarshal(data, &path); err == nil {
			metrics.CacheHits.WithLabelValues("directions").Inc()
			return &path, nil
		}
		// Corrupt entry: drop it and fall through to the provider.
		_ = g.cache.Delete(ctx, key)
	}
	metrics.CacheMisses.WithLabelValues("directions").Inc()

	path, err := g.next.RequestPath(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(path); merr == nil {
		if serr := g.cache.Set(ctx, key, data, int(g.ttl.Seconds())); serr != nil {
			g.log.Warn("path cache write failed", "error", serr)
		}
	}
	return path, nil
}
