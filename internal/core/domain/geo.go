package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ElevationSample is one point of an elevation profile: elevation at a
// cumulative distance along a path. ElevationMeters is nil when the
// elevation service had no reading for the sample location.
type ElevationSample struct {
	DistanceMiles   float64  `json:"distance_miles"`
	ElevationMeters *float64 `json:"elevation_meters"`
}

// PathRequest describes one directions lookup between two endpoints.
//
// Attempt=false means the caller wants a fallback path for this edge and the
// gateway must not be consulted (right-click placement). The disjoint flags
// mark sides whose requested endpoint is not itself road-snapped, so the
// gateway may need to bridge the gap between the requested coordinate and
// the returned path's endpoint.
type PathRequest struct {
	Start         GeoPoint
	End           GeoPoint
	Profile       string
	Bias          float64
	Attempt       bool
	StartDisjoint bool
	EndDisjoint   bool
}

// Path is the result of a directions lookup: an ordered coordinate sequence
// with its real-world length. Followed reports whether the path came from
// the directions provider (vs a straight/great-circle fallback).
type Path struct {
	Coordinates []GeoPoint `json:"coordinates"`
	LengthMiles float64    `json:"length_miles"`
	Followed    bool       `json:"followed"`
}
