package elevation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/routesketch/internal/core/domain"
)

func TestClient_Profile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/lookup", r.URL.Path)
		var req lookupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := lookupResponse{}
		for i, loc := range req.Locations {
			elev := 100.0 + float64(i)*10
			resp.Results = append(resp.Results, struct {
				Latitude  float64  `json:"latitude"`
				Longitude float64  `json:"longitude"`
				Elevation *float64 `json:"elevation"`
			}{Latitude: loc.Latitude, Longitude: loc.Longitude, Elevation: &elev})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	coords := []domain.GeoPoint{
		{Lat: 43.26, Lon: -2.93},
		{Lat: 43.27, Lon: -2.93},
		{Lat: 43.28, Lon: -2.93},
	}
	samples, err := client.Profile(context.Background(), coords, 1.38)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Zero(t, samples[0].DistanceMiles)
	assert.InDelta(t, 0.69, samples[1].DistanceMiles, 0.01)
	assert.InDelta(t, 1.38, samples[2].DistanceMiles, 0.01)
	require.NotNil(t, samples[2].ElevationMeters)
	assert.Equal(t, 120.0, *samples[2].ElevationMeters)
}

func TestClient_ProfileEmptyCoords(t *testing.T) {
	client := NewClient("http://unused", time.Second)
	samples, err := client.Profile(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Nil(t, samples)
}

func TestClient_ProfileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Profile(context.Background(), []domain.GeoPoint{{Lat: 43.26, Lon: -2.93}}, 0)
	require.Error(t, err)
}

func TestPickIndexes(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, pickIndexes(3, 100))

	picked := pickIndexes(1000, 100)
	require.Len(t, picked, 100)
	assert.Equal(t, 0, picked[0])
	assert.Equal(t, 999, picked[len(picked)-1])
	for i := 1; i < len(picked); i++ {
		assert.Greater(t, picked[i], picked[i-1])
	}
}
