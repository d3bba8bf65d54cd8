package usecases

import (
	"context"

	"github.com/google/uuid"

	"github.com/jortega/routesketch/internal/core/domain"
)

// OutAndBack doubles the route by appending its own reverse: every line is
// mirrored with reversed coordinates, negated gain/loss, and a fresh id;
// every marker except the turnaround gets a mirrored twin. A route with
// fewer than two markers is left untouched.
func (e *Editor) OutAndBack(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	if len(markers) < 2 {
		return nil
	}

	rec := domain.OutAndBackRecord{
		MarkerCount: len(markers),
		LineCount:   len(lines),
	}

	mirrored := make([]domain.Line, 0, len(lines))
	for j := len(lines) - 1; j >= 0; j-- {
		orig := lines[j]
		coords := make([]domain.GeoPoint, len(orig.Coordinates))
		for i, c := range orig.Coordinates {
			coords[len(coords)-1-i] = c
		}
		mirrored = append(mirrored, domain.Line{
			ID:          uuid.NewString(),
			Coordinates: coords,
			LengthMiles: orig.LengthMiles,
			// A reversed climb is a descent and vice versa.
			ElevationGain: -orig.ElevationLoss,
			ElevationLoss: -orig.ElevationGain,
		})
	}
	rec.EndpointLineID = mirrored[0].ID

	twins := make([]domain.Marker, 0, len(markers)-1)
	for j := len(markers) - 2; j >= 0; j-- {
		orig := markers[j]
		twins = append(twins, domain.Marker{
			ID:       uuid.NewString(),
			Position: orig.Position,
			Snapped:  orig.Snapped,
		})
	}

	// The turnaround marker picks up the first mirrored line.
	markers[len(markers)-1].LineIDs = append(markers[len(markers)-1].LineIDs, rec.EndpointLineID)

	markers = append(markers, twins...)
	lines = append(lines, mirrored...)

	// Wire the twins positionally: the marker at sequence position i holds
	// the lines at positions i-1 and i.
	for i := rec.MarkerCount; i < len(markers); i++ {
		ids := []string{lines[i-1].ID}
		if i < len(lines) {
			ids = append(ids, lines[i].ID)
		}
		markers[i].LineIDs = ids
	}

	st.ReplaceMarkers(markers)
	st.ReplaceLines(lines)
	e.undo.Push(rec)
	e.publish(ctx)
	return nil
}
