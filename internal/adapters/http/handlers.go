package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// pointPayload is the body for placing a point or reporting a position.
type pointPayload struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Append         *bool   `json:"append,omitempty"`
	SkipDirections bool    `json:"skip_directions,omitempty"`
}

func (p *pointPayload) position() domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

func parsePoint(c *fiber.Ctx) (*pointPayload, error) {
	var p pointPayload
	if err := c.BodyParser(&p); err != nil {
		return nil, errBadRequest(c, "invalid JSON body")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return nil, errBadRequest(c, "lat must be in [-90, 90]")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return nil, errBadRequest(c, "lon must be in [-180, 180]")
	}
	return &p, nil
}

// finish records the mutation outcome and answers with the fresh snapshot.
func finish(c *fiber.Ctx, deps *Dependencies, operation string, err error) error {
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(operation, "rejected").Inc()
		return domainError(c, err)
	}
	metrics.MutationsTotal.WithLabelValues(operation, "ok").Inc()
	snap := deps.Editor.Snapshot()
	metrics.UndoDepth.Set(float64(snap.UndoDepth))
	return c.JSON(snap)
}

// GetRouteHandler returns the current route read model. During a bulk edit
// it reflects the section being drawn.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Editor.Snapshot())
	}
}

// AddPointHandler places a waypoint. append defaults to extending the end
// of the route; skip_directions forces straight-line placement.
func AddPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return err
		}
		appendToEnd := true
		if p.Append != nil {
			appendToEnd = *p.Append
		}
		return finish(c, deps, "add_point",
			deps.Editor.AddPoint(c.UserContext(), p.position(), appendToEnd, p.SkipDirections))
	}
}

// DeletePointHandler removes a waypoint and reconnects its neighbors.
func DeletePointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "delete_point",
			deps.Editor.DeletePoint(c.UserContext(), c.Params("id")))
	}
}

// StartDragHandler flags a waypoint as dragging.
func StartDragHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "start_drag",
			deps.Editor.StartDrag(c.Params("id")))
	}
}

// CancelDragHandler aborts a drag, restoring the original position.
func CancelDragHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "cancel_drag",
			deps.Editor.CancelDrag(c.UserContext(), c.Params("id")))
	}
}

// DragEndHandler commits a drag at the reported position.
func DragEndHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return err
		}
		return finish(c, deps, "drag_end",
			deps.Editor.DragEnd(c.UserContext(), c.Params("id"), p.position()))
	}
}

// ToggleSelectHandler flips a waypoint's bulk-edit selection.
func ToggleSelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "toggle_select",
			deps.Editor.ToggleSelect(c.UserContext(), c.Params("id")))
	}
}

// SplitLineHandler inserts a waypoint into an existing line at the point
// closest to the reported position.
func SplitLineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return err
		}
		return finish(c, deps, "split_line",
			deps.Editor.InsertMidLine(c.UserContext(), c.Params("id"), p.position()))
	}
}

// OutAndBackHandler doubles the route with its own reverse.
func OutAndBackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "out_and_back",
			deps.Editor.OutAndBack(c.UserContext()))
	}
}

// BeginEditHandler opens a bulk-edit session over the selected section.
func BeginEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "begin_edit",
			deps.Editor.BeginEdit(c.UserContext()))
	}
}

// FinishEditHandler commits the drawn section into the route.
func FinishEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "finish_edit",
			deps.Editor.FinishEdit(c.UserContext()))
	}
}

// CancelEditHandler discards the bulk-edit session.
func CancelEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "cancel_edit",
			deps.Editor.CancelEdit(c.UserContext()))
	}
}

// UndoHandler reverses the most recent operation.
func UndoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return finish(c, deps, "undo",
			deps.Editor.Undo(c.UserContext()))
	}
}
