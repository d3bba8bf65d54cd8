package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/jortega/routesketch/internal/adapters/http"
	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/core/usecases"
)

// ---- Mock directions gateway ----

type mockGateway struct {
	requestFn func(ctx context.Context, req domain.PathRequest) (*domain.Path, error)
}

func (m *mockGateway) RequestPath(ctx context.Context, req domain.PathRequest) (*domain.Path, error) {
	if m.requestFn != nil {
		return m.requestFn(ctx, req)
	}
	return nil, domain.ErrNoRoute
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps() *handler.Dependencies {
	return &handler.Dependencies{
		Editor: usecases.NewEditor(&mockGateway{}, nil, "walking", 0.2),
		Hub:    handler.NewHub(),
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, domain.RouteSnapshot) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var snap domain.RouteSnapshot
	if resp.StatusCode == 200 {
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode, snap
}

func addPoint(t *testing.T, app *fiber.App, lat, lon float64) domain.RouteSnapshot {
	t.Helper()
	code, snap := postJSON(t, app, "/v1/route/points", map[string]any{"lat": lat, "lon": lon})
	if code != 200 {
		t.Fatalf("add point: status %d", code)
	}
	return snap
}

// ---- Route handler tests ----

func TestGetRoute_Empty(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/route", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap domain.RouteSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Markers) != 0 || snap.UndoDepth != 0 {
		t.Errorf("fresh route not empty: %+v", snap)
	}
}

func TestAddPoint_Success(t *testing.T) {
	app := setupApp(makeDeps())

	snap := addPoint(t, app, 43.26, -2.93)
	if len(snap.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(snap.Markers))
	}

	snap = addPoint(t, app, 43.27, -2.93)
	if len(snap.Markers) != 2 || len(snap.Lines) != 1 {
		t.Fatalf("expected 2 markers 1 line, got %d/%d", len(snap.Markers), len(snap.Lines))
	}
	if snap.UndoDepth != 2 {
		t.Errorf("undo depth %d, want 2", snap.UndoDepth)
	}
}

func TestAddPoint_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps())

	code, _ := postJSON(t, app, "/v1/route/points", map[string]any{"lat": 95.0, "lon": 0.0})
	if code != 400 {
		t.Fatalf("expected 400 for out-of-range lat, got %d", code)
	}

	req := httptest.NewRequest("POST", "/v1/route/points", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestDeletePoint_NotFound(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)

	req := httptest.NewRequest("DELETE", "/v1/route/points/ghost", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "not_found" {
		t.Errorf("error code %q, want not_found", apiErr.Code)
	}
}

func TestDeletePoint_Success(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)
	snap := addPoint(t, app, 43.27, -2.93)

	req := httptest.NewRequest("DELETE", "/v1/route/points/"+snap.Markers[1].ID, nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var after domain.RouteSnapshot
	json.NewDecoder(resp.Body).Decode(&after)
	if len(after.Markers) != 1 || len(after.Lines) != 0 {
		t.Errorf("got %d markers %d lines after delete", len(after.Markers), len(after.Lines))
	}
}

func TestDrag_Flow(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)
	snap := addPoint(t, app, 43.27, -2.93)
	id := snap.Markers[1].ID

	code, _ := postJSON(t, app, "/v1/route/points/"+id+"/drag-start", nil)
	if code != 200 {
		t.Fatalf("drag-start: status %d", code)
	}

	code, after := postJSON(t, app, "/v1/route/points/"+id+"/drag-end",
		map[string]any{"lat": 43.28, "lon": -2.94})
	if code != 200 {
		t.Fatalf("drag-end: status %d", code)
	}
	want := domain.GeoPoint{Lat: 43.28, Lon: -2.94}
	if after.Markers[1].Position != want {
		t.Errorf("marker at %v, want %v", after.Markers[1].Position, want)
	}
}

func TestSplitLine_Success(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)
	snap := addPoint(t, app, 43.27, -2.93)

	code, after := postJSON(t, app, "/v1/route/lines/"+snap.Lines[0].ID+"/split",
		map[string]any{"lat": 43.265, "lon": -2.931})
	if code != 200 {
		t.Fatalf("split: status %d", code)
	}
	if len(after.Markers) != 3 || len(after.Lines) != 2 {
		t.Errorf("got %d markers %d lines after split", len(after.Markers), len(after.Lines))
	}
}

func TestOutAndBack_Success(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)
	addPoint(t, app, 43.27, -2.93)

	code, snap := postJSON(t, app, "/v1/route/out-and-back", nil)
	if code != 200 {
		t.Fatalf("out-and-back: status %d", code)
	}
	if len(snap.Markers) != 3 || len(snap.Lines) != 2 {
		t.Errorf("got %d markers %d lines", len(snap.Markers), len(snap.Lines))
	}
}

func TestUndo_Success(t *testing.T) {
	app := setupApp(makeDeps())
	addPoint(t, app, 43.26, -2.93)
	addPoint(t, app, 43.27, -2.93)

	code, snap := postJSON(t, app, "/v1/route/undo", nil)
	if code != 200 {
		t.Fatalf("undo: status %d", code)
	}
	if len(snap.Markers) != 1 || snap.UndoDepth != 1 {
		t.Errorf("after undo: %d markers, depth %d", len(snap.Markers), snap.UndoDepth)
	}
}

func TestBulkEdit_Flow(t *testing.T) {
	app := setupApp(makeDeps())
	var snap domain.RouteSnapshot
	for i := 0; i < 4; i++ {
		snap = addPoint(t, app, 43.26+float64(i)*0.01, -2.93)
	}

	// Finish with no session open is a conflict.
	code, _ := postJSON(t, app, "/v1/route/edit/finish", nil)
	if code != 409 {
		t.Fatalf("finish without session: status %d, want 409", code)
	}

	for _, i := range []int{0, 3} {
		code, _ = postJSON(t, app, "/v1/route/points/"+snap.Markers[i].ID+"/select", nil)
		if code != 200 {
			t.Fatalf("select marker %d: status %d", i, code)
		}
	}

	code, session := postJSON(t, app, "/v1/route/edit/begin", nil)
	if code != 200 {
		t.Fatalf("begin: status %d", code)
	}
	if !session.EditSessionActive || len(session.Markers) != 1 {
		t.Fatalf("session snapshot: %+v", session)
	}

	// Draw across the gap, then commit.
	addPoint(t, app, 43.275, -2.95)
	addPoint(t, app, 43.29, -2.93)

	code, final := postJSON(t, app, "/v1/route/edit/finish", nil)
	if code != 200 {
		t.Fatalf("finish: status %d", code)
	}
	if final.EditSessionActive {
		t.Error("session still active after finish")
	}
	if len(final.Markers) != 3 || len(final.Lines) != 2 {
		t.Errorf("spliced route has %d markers %d lines", len(final.Markers), len(final.Lines))
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	for _, path := range []string{"/v1/health", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s: status %d", path, resp.StatusCode)
		}
	}
}

func TestReady_NoBackends(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 with optional backends unset, got %d", resp.StatusCode)
	}
}

func TestErrorPayloadShape(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("DELETE", "/v1/route/points/ghost", nil)
	resp, _ := app.Test(req, -1)

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Status != 404 || apiErr.Message == "" {
		t.Errorf("unexpected error payload: %+v", apiErr)
	}
}

func TestAddPoint_ManySequential(t *testing.T) {
	app := setupApp(makeDeps())
	for i := 0; i < 10; i++ {
		snap := addPoint(t, app, 43.26+float64(i)*0.005, -2.93)
		if len(snap.Markers) != i+1 {
			t.Fatalf("after add %d: %d markers", i, len(snap.Markers))
		}
	}
}
