package ports

import (
	"context"

	"github.com/jortega/routesketch/internal/core/domain"
)

// DirectionsGateway produces a road/path-following route between two points.
// A gateway that cannot serve the request (provider down, no route found,
// or Attempt=false) returns an error wrapping domain.ErrNoRoute; callers
// then synthesize a straight or great-circle fallback. Gateway failure is
// never fatal to a mutation.
type DirectionsGateway interface {
	RequestPath(ctx context.Context, req domain.PathRequest) (*domain.Path, error)
}

// ElevationService looks up an elevation profile for a coordinate sequence.
// Best-effort: errors degrade to an empty profile, never abort a mutation.
type ElevationService interface {
	Profile(ctx context.Context, coords []domain.GeoPoint, totalMiles float64) ([]domain.ElevationSample, error)
}

// SnapshotPublisher pushes the route read model to display observers after
// every committed mutation. Observers are strictly passive; they never
// mutate the route.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap domain.RouteSnapshot) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
