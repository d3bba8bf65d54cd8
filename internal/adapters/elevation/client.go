package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// maxSamples bounds one profile lookup; the provider rejects oversized
// batches and a line gains nothing from sub-hundred-foot resolution.
const maxSamples = 100

// Client is an Open-Elevation style batch lookup client implementing
// ports.ElevationService.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates an elevation client against baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        slog.Default(),
	}
}

type lookupRequest struct {
	Locations []lookupLocation `json:"locations"`
}

type lookupLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupResponse struct {
	Results []struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Profile samples elevations along a coordinate sequence. Coordinates are
// thinned evenly to the batch limit; each sample carries its along-path
// distance so gain/loss integration does not depend on sample density.
func (c *Client) Profile(ctx context.Context, coords []domain.GeoPoint, totalMiles float64) ([]domain.ElevationSample, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	distances := make([]float64, len(coords))
	for i := 1; i < len(coords); i++ {
		distances[i] = distances[i-1] + geospatial.DistanceMiles(coords[i-1], coords[i])
	}

	picked := pickIndexes(len(coords), maxSamples)
	body := lookupRequest{Locations: make([]lookupLocation, len(picked))}
	for i, idx := range picked {
		body.Locations[i] = lookupLocation{Latitude: coords[idx].Lat, Longitude: coords[idx].Lon}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal elevation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/lookup", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build elevation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ElevationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.ElevationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("elevation API %d: %s", resp.StatusCode, string(raw))
	}

	var lr lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		metrics.ElevationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(lr.Results) != len(picked) {
		metrics.ElevationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("elevation API returned %d results for %d locations", len(lr.Results), len(picked))
	}

	samples := make([]domain.ElevationSample, len(picked))
	for i, idx := range picked {
		samples[i] = domain.ElevationSample{
			DistanceMiles:   distances[idx],
			ElevationMeters: lr.Results[i].Elevation,
		}
	}
	metrics.ElevationRequests.WithLabelValues("ok").Inc()
	return samples, nil
}

// pickIndexes thins n coordinate indexes to at most limit, always keeping
// the first and last.
func pickIndexes(n, limit int) []int {
	if n <= limit {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, limit)
	for i := 0; i < limit; i++ {
		out[i] = i * (n - 1) / (limit - 1)
	}
	return out
}
