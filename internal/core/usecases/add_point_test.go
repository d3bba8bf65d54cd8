package usecases_test

import (
	"context"
	"testing"

	"github.com/jortega/routesketch/internal/core/domain"
)

func TestAddPoint_FirstMarkerHasNoLine(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 1)

	snap := ed.Snapshot()
	if len(snap.Markers) != 1 || len(snap.Lines) != 0 {
		t.Fatalf("got %d markers, %d lines", len(snap.Markers), len(snap.Lines))
	}
	if len(snap.Markers[0].LineIDs) != 0 {
		t.Errorf("lone marker holds line ids %v", snap.Markers[0].LineIDs)
	}
	if snap.UndoDepth != 1 {
		t.Errorf("undo depth %d, want 1", snap.UndoDepth)
	}
}

func TestAddPoint_AppendExtendsEnd(t *testing.T) {
	gw := &stubGateway{}
	ed := newEditor(gw)
	buildRoute(t, ed, 3)

	snap := ed.Snapshot()
	checkAdjacency(t, snap)
	if snap.Markers[2].Position != pt(2) {
		t.Errorf("last marker at %v, want %v", snap.Markers[2].Position, pt(2))
	}

	// Fallback lines are straight 2-point segments for sub-mile legs.
	for i, l := range snap.Lines {
		if len(l.Coordinates) != 2 {
			t.Errorf("line %d has %d coordinates, want 2", i, len(l.Coordinates))
		}
	}

	reqs := gw.recorded()
	if len(reqs) != 2 {
		t.Fatalf("gateway called %d times, want 2", len(reqs))
	}
	// Unsnapped anchors flag their side disjoint so the gateway bridges the
	// offset; the fresh click side never does.
	for i, r := range reqs {
		if !r.StartDisjoint || r.EndDisjoint {
			t.Errorf("request %d disjoint flags start=%v end=%v", i, r.StartDisjoint, r.EndDisjoint)
		}
	}
}

func TestAddPoint_PrependExtendsStart(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)

	if err := ed.AddPoint(context.Background(), pt(-1), false, false); err != nil {
		t.Fatalf("prepend: %v", err)
	}

	snap := ed.Snapshot()
	checkAdjacency(t, snap)
	if snap.Markers[0].Position != pt(-1) {
		t.Errorf("first marker at %v, want %v", snap.Markers[0].Position, pt(-1))
	}
}

func TestAddPoint_ClickOnExistingMarkerIgnored(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)

	if err := ed.AddPoint(context.Background(), pt(1), true, false); err != nil {
		t.Fatalf("re-click: %v", err)
	}
	snap := ed.Snapshot()
	if len(snap.Markers) != 2 {
		t.Fatalf("re-click added a marker: %d", len(snap.Markers))
	}
	if snap.UndoDepth != 2 {
		t.Errorf("re-click pushed an undo record: depth %d", snap.UndoDepth)
	}
}

func TestAddPoint_IgnoredWhileDragInProgress(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 2)
	snap := ed.Snapshot()

	if err := ed.StartDrag(snap.Markers[1].ID); err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if err := ed.AddPoint(context.Background(), pt(5), true, false); err != nil {
		t.Fatalf("add during drag: %v", err)
	}
	if got := len(ed.Snapshot().Markers); got != 2 {
		t.Fatalf("add during drag created a marker: %d", got)
	}
}

func TestAddPoint_SnapsToFollowedPath(t *testing.T) {
	followed := []domain.GeoPoint{
		{Lat: 43.2601, Lon: -2.9301},
		{Lat: 43.265, Lon: -2.93},
		{Lat: 43.2699, Lon: -2.9299},
	}
	gw := &stubGateway{
		requestFn: func(ctx context.Context, req domain.PathRequest) (*domain.Path, error) {
			return &domain.Path{Coordinates: followed, LengthMiles: 0.69}, nil
		},
	}
	ed := newEditor(gw)
	buildRoute(t, ed, 2)

	snap := ed.Snapshot()
	// Both markers adopt the path endpoints: the new one always, the anchor
	// because it was the only other marker.
	if snap.Markers[1].Position != followed[2] || !snap.Markers[1].Snapped {
		t.Errorf("new marker %+v not snapped to path end", snap.Markers[1])
	}
	if snap.Markers[0].Position != followed[0] || !snap.Markers[0].Snapped {
		t.Errorf("anchor %+v not snapped to path start", snap.Markers[0])
	}

	// A third point now extends from a snapped anchor.
	if err := ed.AddPoint(context.Background(), pt(2), true, false); err != nil {
		t.Fatalf("third add: %v", err)
	}
	reqs := gw.recorded()
	if last := reqs[len(reqs)-1]; last.StartDisjoint {
		t.Error("snapped anchor flagged disjoint")
	}
}

func TestAddPoint_SkipDirectionsUsesFallback(t *testing.T) {
	gw := &stubGateway{
		requestFn: func(ctx context.Context, req domain.PathRequest) (*domain.Path, error) {
			t.Error("gateway consulted for a skip-directions placement")
			return nil, domain.ErrNoRoute
		},
	}
	ed := newEditor(gw)
	buildRoute(t, ed, 1)
	if err := ed.AddPoint(context.Background(), pt(1), true, true); err != nil {
		t.Fatalf("skip-directions add: %v", err)
	}
	snap := ed.Snapshot()
	if len(snap.Lines) != 1 || len(snap.Lines[0].Coordinates) != 2 {
		t.Fatalf("expected one straight fallback line, got %+v", snap.Lines)
	}
	if snap.Markers[1].Snapped {
		t.Error("fallback placement must not snap the marker")
	}
}

func TestAddPoint_UndoRemovesMarkerAndLine(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 3)
	before := ed.Snapshot()

	if err := ed.AddPoint(context.Background(), pt(3), true, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ed.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}

	after := ed.Snapshot()
	if !snapshotsEqual(before, after) {
		t.Errorf("undo did not restore the route:\n before %+v\n after  %+v", before, after)
	}
}

func TestAddPoint_UndoToEmpty(t *testing.T) {
	ed := newEditor(&stubGateway{})
	buildRoute(t, ed, 3)
	for i := 0; i < 3; i++ {
		if err := ed.Undo(context.Background()); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	snap := ed.Snapshot()
	if len(snap.Markers) != 0 || len(snap.Lines) != 0 || snap.UndoDepth != 0 {
		t.Fatalf("expected empty route, got %d markers %d lines depth %d",
			len(snap.Markers), len(snap.Lines), snap.UndoDepth)
	}
}
