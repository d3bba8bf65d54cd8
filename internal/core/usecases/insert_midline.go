package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
)

// InsertMidLine splits an existing line at the point closest to pos and
// places a new waypoint at the split. The two halves replace the original
// line in position order; the undo record carries the whole removed line so
// undo is a pure splice-back.
func (e *Editor) InsertMidLine(ctx context.Context, lineID string, pos domain.GeoPoint) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	li := lineIndex(lines, lineID)
	if li < 0 {
		return fmt.Errorf("insert mid-line: %w: %s", domain.ErrLineNotFound, lineID)
	}
	line := lines[li]

	// The line must be held by exactly its two endpoint markers.
	holders := 0
	for _, m := range markers {
		if m.HasLine(lineID) {
			holders++
		}
	}
	if holders != 2 || li+1 >= len(markers) || !markers[li].HasLine(lineID) || !markers[li+1].HasLine(lineID) {
		err := fmt.Errorf("%w: line %s is associated with %d markers", domain.ErrInconsistentRoute, lineID, holders)
		e.log.Error("insert mid-line aborted", "error", err)
		return err
	}

	leftCoords, rightCoords := geospatial.SplitAtPoint(line.Coordinates, pos)

	left := domain.Line{
		ID:          uuid.NewString(),
		Coordinates: leftCoords,
		LengthMiles: geospatial.PathLengthMiles(leftCoords),
	}
	left.ElevationGain, left.ElevationLoss = e.lineElevation(ctx, left.Coordinates, left.LengthMiles)

	right := domain.Line{
		ID:          uuid.NewString(),
		Coordinates: rightCoords,
		LengthMiles: geospatial.PathLengthMiles(rightCoords),
	}
	right.ElevationGain, right.ElevationLoss = e.lineElevation(ctx, right.Coordinates, right.LengthMiles)

	marker := domain.Marker{
		ID:       uuid.NewString(),
		Position: pos,
		LineIDs:  []string{left.ID, right.ID},
	}

	rec := domain.InsertRecord{
		MarkerIndex: li + 1,
		NewLineIDs:  [2]string{left.ID, right.ID},
		RemovedLine: line.Clone(),
	}

	markers[li].LineIDs = replaceLineID(markers[li].LineIDs, lineID, left.ID)
	markers[li+1].LineIDs = replaceLineID(markers[li+1].LineIDs, lineID, right.ID)

	newMarkers := make([]domain.Marker, 0, len(markers)+1)
	newMarkers = append(newMarkers, markers[:li+1]...)
	newMarkers = append(newMarkers, marker)
	newMarkers = append(newMarkers, markers[li+1:]...)

	newLines := make([]domain.Line, 0, len(lines)+1)
	newLines = append(newLines, lines[:li]...)
	newLines = append(newLines, left, right)
	newLines = append(newLines, lines[li+1:]...)

	st.ReplaceMarkers(newMarkers)
	st.ReplaceLines(newLines)
	e.undo.Push(rec)
	e.publish(ctx)
	return nil
}
