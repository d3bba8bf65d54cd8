package usecases

import (
	"context"

	"github.com/google/uuid"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
)

// AddPoint places a new waypoint at pos and, when the route is non-empty,
// connects it to the current end (appendToEnd) or start marker with a line
// from the directions gateway. skipDirections forces the straight/
// great-circle fallback for this one edge (right-click placement).
//
// When the gateway follows a road, the stored position of the new marker is
// corrected to the snapped endpoint of the returned path; if this is only
// the second marker of the route the other endpoint is corrected too.
func (e *Editor) AddPoint(ctx context.Context, pos domain.GeoPoint, appendToEnd, skipDirections bool) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	// A drag in flight takes precedence over the click.
	for _, m := range markers {
		if m.Dragging {
			e.log.Debug("add point ignored, drag in progress", "marker_id", m.ID)
			return nil
		}
	}

	// Clicks landing on an existing marker belong to other gestures.
	for _, m := range markers {
		if geospatial.SamePoint(m.Position, pos) {
			return nil
		}
	}

	marker := domain.Marker{ID: uuid.NewString(), Position: pos}

	if len(markers) == 0 {
		st.ReplaceMarkers([]domain.Marker{marker})
		e.undo.Push(domain.AddRecord{Marker: marker.Clone()})
		e.publish(ctx)
		return nil
	}

	// The edit section only grows from its start boundary toward the
	// finish marker, so a session forces append mode.
	if e.currentSession() != nil {
		appendToEnd = true
	}

	anchorIdx := 0
	if appendToEnd {
		anchorIdx = len(markers) - 1
	}
	anchor := markers[anchorIdx]

	var path domain.Path
	if appendToEnd {
		path = e.requestPath(ctx, anchor.Position, pos, !skipDirections, !anchor.Snapped, false)
	} else {
		path = e.requestPath(ctx, pos, anchor.Position, !skipDirections, false, !anchor.Snapped)
	}

	line := domain.Line{
		ID:          uuid.NewString(),
		Coordinates: path.Coordinates,
		LengthMiles: path.LengthMiles,
	}
	line.ElevationGain, line.ElevationLoss = e.lineElevation(ctx, line.Coordinates, line.LengthMiles)

	if path.Followed {
		// The gateway may start or end slightly off the requested
		// points; adopt its endpoints so markers sit on the path.
		if appendToEnd {
			marker.Position = path.Coordinates[len(path.Coordinates)-1]
		} else {
			marker.Position = path.Coordinates[0]
		}
		marker.Snapped = true

		if len(markers) == 1 {
			if appendToEnd {
				anchor.Position = path.Coordinates[0]
			} else {
				anchor.Position = path.Coordinates[len(path.Coordinates)-1]
			}
			anchor.Snapped = true
		}
	}

	marker.LineIDs = []string{line.ID}
	if appendToEnd {
		anchor.LineIDs = append(anchor.LineIDs, line.ID)
		markers[anchorIdx] = anchor
		markers = append(markers, marker)
		lines = append(lines, line)
	} else {
		anchor.LineIDs = append([]string{line.ID}, anchor.LineIDs...)
		markers[anchorIdx] = anchor
		markers = append([]domain.Marker{marker}, markers...)
		lines = append([]domain.Line{line}, lines...)
	}

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	e.undo.Push(domain.AddRecord{Marker: marker.Clone()})
	e.publish(ctx)
	return nil
}
