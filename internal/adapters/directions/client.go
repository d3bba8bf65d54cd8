package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

const (
	metersPerMile = 1609.344

	// A followed path may start or end slightly away from the requested
	// point (the provider snaps to its network). When the caller flags a
	// side disjoint and the offset exceeds this, a straight connector
	// bridges the gap so consecutive lines stay visually joined.
	connectorThresholdMiles = 0.005
)

// Client is a Mapbox Directions API v5 gateway. It implements
// ports.DirectionsGateway: an unroutable pair, an empty answer, or a skipped
// attempt all surface as domain.ErrNoRoute so the core can fall back to
// synthetic geometry.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a directions client against baseURL.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		log:         slog.Default(),
	}
}

type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// RequestPath asks the provider for a path following its road/trail network.
func (c *Client) RequestPath(ctx context.Context, req domain.PathRequest) (*domain.Path, error) {
	if !req.Attempt {
		return nil, fmt.Errorf("lookup skipped: %w", domain.ErrNoRoute)
	}

	q := url.Values{}
	q.Set("geometries", "polyline6")
	q.Set("overview", "full")
	q.Set("access_token", c.accessToken)
	if req.Profile == "walking" {
		q.Set("walkway_bias", fmt.Sprintf("%g", req.Bias))
	}

	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/%s/%f,%f;%f,%f?%s",
		c.baseURL, req.Profile,
		req.Start.Lon, req.Start.Lat,
		req.End.Lon, req.End.Lat,
		q.Encode(),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build directions request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.DirectionsLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DirectionsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	// Mapbox reports "no route between these points" as 200/NoRoute or as
	// 422 for unroutable coordinates; both mean fall back, not fail.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		metrics.DirectionsRequests.WithLabelValues("no_route").Inc()
		return nil, fmt.Errorf("unroutable coordinates: %w", domain.ErrNoRoute)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.DirectionsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("directions API %d: %s", resp.StatusCode, string(body))
	}

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		metrics.DirectionsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode directions response: %w", err)
	}
	if dr.Code != "Ok" || len(dr.Routes) == 0 {
		metrics.DirectionsRequests.WithLabelValues("no_route").Inc()
		return nil, fmt.Errorf("provider answered %q: %w", dr.Code, domain.ErrNoRoute)
	}

	route := dr.Routes[0]
	codec := polyline.Codec{Dim: 2, Scale: 1e6}
	raw, _, err := codec.DecodeCoords([]byte(route.Geometry))
	if err != nil {
		metrics.DirectionsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(raw) < 2 {
		metrics.DirectionsRequests.WithLabelValues("no_route").Inc()
		return nil, fmt.Errorf("degenerate geometry: %w", domain.ErrNoRoute)
	}

	coords := make([]domain.GeoPoint, len(raw))
	for i, c := range raw {
		coords[i] = domain.GeoPoint{Lat: c[0], Lon: c[1]}
	}
	length := route.Distance / metersPerMile

	// Bridge provider snapping offsets on the sides the caller marked as
	// already off-network.
	if req.StartDisjoint {
		if d := geospatial.DistanceMiles(req.Start, coords[0]); d > connectorThresholdMiles {
			coords = append([]domain.GeoPoint{req.Start}, coords...)
			length += d
		}
	}
	if req.EndDisjoint {
		if d := geospatial.DistanceMiles(coords[len(coords)-1], req.End); d > connectorThresholdMiles {
			coords = append(coords, req.End)
			length += d
		}
	}

	metrics.DirectionsRequests.WithLabelValues("followed").Inc()
	c.log.Debug("directions resolved",
		"profile", req.Profile,
		"points", len(coords),
		"miles", length,
	)

	return &domain.Path{
		Coordinates: coords,
		LengthMiles: length,
		Followed:    true,
	}, nil
}
