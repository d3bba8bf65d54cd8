package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/core/ports"
	"github.com/jortega/routesketch/internal/pkg/geospatial"
)

// Editor owns the route-drawing state machine: the live route, the optional
// bulk-edit shadow model, and the undo log. Every user gesture maps to one
// method; each method resolves its target store fresh, runs under the
// re-entry-rejecting guard, computes the full new state (possibly awaiting
// the directions gateway), commits it with whole-collection replaces, pushes
// exactly one undo record, and publishes a snapshot.
type Editor struct {
	// mu serializes the pointer-driven entry points. TryLock semantics:
	// a gesture arriving while another operation runs (including while it
	// awaits the gateway) is dropped with ErrEditorBusy, never queued.
	mu sync.Mutex

	sessionMu sync.RWMutex
	session   *ShadowEditStore

	main *MainRouteStore
	undo *UndoLog

	directions ports.DirectionsGateway
	elevation  ports.ElevationService
	publishers []ports.SnapshotPublisher

	profile string
	bias    float64

	log *slog.Logger
}

// NewEditor creates an editor over an empty route. The elevation service
// may be nil; lines then carry zero gain/loss.
func NewEditor(directions ports.DirectionsGateway, elevation ports.ElevationService, profile string, bias float64) *Editor {
	return &Editor{
		main:       NewMainRouteStore(),
		undo:       NewUndoLog(),
		directions: directions,
		elevation:  elevation,
		profile:    profile,
		bias:       bias,
		log:        slog.Default(),
	}
}

// AddPublisher registers a snapshot observer. Not safe to call after the
// editor starts serving gestures.
func (e *Editor) AddPublisher(p ports.SnapshotPublisher) {
	e.publishers = append(e.publishers, p)
}

// acquire takes the guard or reports the editor busy.
func (e *Editor) acquire() error {
	if !e.mu.TryLock() {
		return domain.ErrEditorBusy
	}
	return nil
}

// store resolves the model the next operation works against. The check is
// made fresh on every call: a bulk-edit session can begin or end between
// any two operations.
func (e *Editor) store() ports.RouteStore {
	e.sessionMu.RLock()
	defer e.sessionMu.RUnlock()
	if e.session != nil {
		return e.session
	}
	return e.main
}

func (e *Editor) currentSession() *ShadowEditStore {
	e.sessionMu.RLock()
	defer e.sessionMu.RUnlock()
	return e.session
}

func (e *Editor) setSession(s *ShadowEditStore) {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	e.session = s
}

// EditActive reports whether a bulk-edit session is in progress.
func (e *Editor) EditActive() bool {
	return e.currentSession() != nil
}

// GapClosed reports whether the bulk-edit drawing has reached the finish
// marker. Always false outside a session.
func (e *Editor) GapClosed() bool {
	if s := e.currentSession(); s != nil {
		return s.GapClosed()
	}
	return false
}

// UndoDepth returns the number of undoable operations.
func (e *Editor) UndoDepth() int {
	return e.undo.Depth()
}

// Snapshot builds the read model for display observers. During a bulk edit
// it reflects the shadow collections being drawn.
func (e *Editor) Snapshot() domain.RouteSnapshot {
	st := e.store()
	markers := st.Markers()
	lines := st.Lines()

	var total, gain, loss float64
	for _, l := range lines {
		total += l.LengthMiles
		gain += l.ElevationGain
		loss += l.ElevationLoss
	}

	return domain.RouteSnapshot{
		Markers:           markers,
		Lines:             lines,
		TotalMiles:        total,
		ElevationGain:     gain,
		ElevationLoss:     loss,
		UndoDepth:         e.undo.Depth(),
		EditSessionActive: e.EditActive(),
		GapClosed:         e.GapClosed(),
	}
}

func (e *Editor) publish(ctx context.Context) {
	snap := e.Snapshot()
	for _, p := range e.publishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			e.log.Warn("snapshot publish failed", "error", err)
		}
	}
}

// requestPath asks the gateway for a followed path between start and end,
// synthesizing the straight/great-circle fallback when the gateway is
// skipped, unreachable, or errors. Gateway failure is never fatal here.
func (e *Editor) requestPath(ctx context.Context, start, end domain.GeoPoint, attempt, startDisjoint, endDisjoint bool) domain.Path {
	if attempt && e.directions != nil {
		path, err := e.directions.RequestPath(ctx, domain.PathRequest{
			Start:         start,
			End:           end,
			Profile:       e.profile,
			Bias:          e.bias,
			Attempt:       true,
			StartDisjoint: startDisjoint,
			EndDisjoint:   endDisjoint,
		})
		if err == nil && path != nil && len(path.Coordinates) >= 2 {
			p := *path
			p.Coordinates = append([]domain.GeoPoint(nil), path.Coordinates...)
			p.Followed = true
			return p
		}
		if err != nil && !errors.Is(err, domain.ErrNoRoute) {
			e.log.Warn("directions lookup failed, using fallback", "error", err)
		}
	}

	coords := geospatial.FallbackPath(start, end)
	return domain.Path{
		Coordinates: coords,
		LengthMiles: geospatial.PathLengthMiles(coords),
		Followed:    false,
	}
}

// lineElevation fetches gain/loss for a line's geometry. Best-effort: any
// elevation failure yields a zero profile.
func (e *Editor) lineElevation(ctx context.Context, coords []domain.GeoPoint, lengthMiles float64) (gain, loss float64) {
	if e.elevation == nil {
		return 0, 0
	}
	samples, err := e.elevation.Profile(ctx, coords, lengthMiles)
	if err != nil {
		e.log.Debug("elevation profile unavailable", "error", err)
		return 0, 0
	}
	return geospatial.ElevationChange(samples)
}

func markerIndex(markers []domain.Marker, id string) int {
	for i, m := range markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func lineIndex(lines []domain.Line, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func removeLineID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func replaceLineID(ids []string, oldID, newID string) []string {
	for i, v := range ids {
		if v == oldID {
			ids[i] = newID
		}
	}
	return ids
}
