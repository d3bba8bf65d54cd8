package domain

// Marker is a user-placed waypoint on the route.
//
// LineIDs holds the ids of the lines that end at this marker, in adjacency
// order: for the marker at sequence position i these are the line at
// position i-1 (if any) followed by the line at position i (if any).
// Interior markers always carry exactly two ids, endpoint markers one,
// a sole marker none.
type Marker struct {
	ID               string    `json:"id"`
	Position         GeoPoint  `json:"position"`
	LineIDs          []string  `json:"line_ids"`
	Snapped          bool      `json:"snapped"`
	Dragging         bool      `json:"dragging,omitempty"`
	OriginalPosition *GeoPoint `json:"original_position,omitempty"`
	ElevationMeters  float64   `json:"elevation_meters,omitempty"`
	SelectedForEdit  bool      `json:"selected_for_edit,omitempty"`
	Hidden           bool      `json:"hidden,omitempty"`
}

// Clone returns a deep copy of the marker.
func (m Marker) Clone() Marker {
	c := m
	c.LineIDs = append([]string(nil), m.LineIDs...)
	if m.OriginalPosition != nil {
		p := *m.OriginalPosition
		c.OriginalPosition = &p
	}
	return c
}

// HasLine reports whether the marker references the given line id.
func (m Marker) HasLine(lineID string) bool {
	for _, id := range m.LineIDs {
		if id == lineID {
			return true
		}
	}
	return false
}

// Line is a path segment connecting two adjacent markers.
//
// LengthMiles always equals the geodesic length of Coordinates or, for a
// followed path, the length reported by the directions provider. Gain is
// non-negative, Loss non-positive. Editing is a display-only flag set while
// the segment is under bulk redraw.
type Line struct {
	ID            string     `json:"id"`
	Coordinates   []GeoPoint `json:"coordinates"`
	LengthMiles   float64    `json:"length_miles"`
	ElevationGain float64    `json:"elevation_gain"`
	ElevationLoss float64    `json:"elevation_loss"`
	Editing       bool       `json:"editing,omitempty"`
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	c := l
	c.Coordinates = append([]GeoPoint(nil), l.Coordinates...)
	return c
}

// CloneMarkers deep-copies a marker sequence.
func CloneMarkers(markers []Marker) []Marker {
	if markers == nil {
		return nil
	}
	out := make([]Marker, len(markers))
	for i, m := range markers {
		out[i] = m.Clone()
	}
	return out
}

// CloneLines deep-copies a line sequence.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// RouteSnapshot is the read model published to display observers after every
// committed mutation.
type RouteSnapshot struct {
	Markers           []Marker `json:"markers"`
	Lines             []Line   `json:"lines"`
	TotalMiles        float64  `json:"total_miles"`
	ElevationGain     float64  `json:"elevation_gain"`
	ElevationLoss     float64  `json:"elevation_loss"`
	UndoDepth         int      `json:"undo_depth"`
	EditSessionActive bool     `json:"edit_session_active"`
	GapClosed         bool     `json:"gap_closed"`
}
