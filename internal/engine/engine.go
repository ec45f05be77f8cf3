package engine

import (
	"encoding/json"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
)

// maxHistory bounds the undo stack.
const maxHistory = 100

// Engine is one editor session. It owns the current floorplan snapshot and the
// undo/redo history; the canvas layer sends it commands and reads queries.
// An Engine is not safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	resolver *drop.Resolver

	// Current snapshot, replaced (never modified) by every edit
	plan   floorplan.FloorplanWithStairs
	loaded bool

	// 1-based index of the floor shown on the canvas
	floor int

	// Selected placement (backend owns this)
	selection string

	undo []floorplan.FloorplanWithStairs
	redo []floorplan.FloorplanWithStairs
}

// NewEngine creates an engine using the given catalog, or the built-in one
// when c is nil.
func NewEngine(c *catalog.Catalog) *Engine {
	if c == nil {
		c = catalog.Default()
	}
	return &Engine{
		catalog:  c,
		resolver: drop.NewResolver(c),
		floor:    1,
	}
}

// --- Commands (frontend → backend) ---

// LoadFloorplan replaces the session with a stored floorplan and clears the
// history.
func (e *Engine) LoadFloorplan(jsonData string) error {
	fp, err := floorplan.Decode([]byte(jsonData))
	if err != nil {
		return err
	}
	e.reset(fp)
	return nil
}

// LoadSample loads the built-in sample house.
func (e *Engine) LoadSample() {
	e.reset(floorplan.NewSample())
}

func (e *Engine) reset(fp floorplan.FloorplanWithStairs) {
	e.plan = fp
	e.loaded = true
	e.floor = 1
	e.selection = ""
	e.undo = nil
	e.redo = nil
}

// SetFloor switches the active floor. Out-of-range indexes are ignored.
func (e *Engine) SetFloor(index int) {
	if _, ok := e.plan.FloorByIndex(index); ok {
		e.floor = index
	}
}

// SetSelection selects a placement by id; an empty id clears the selection.
func (e *Engine) SetSelection(id string) {
	e.selection = id
}

// Drop resolves a drop on the active floor and commits it. Ignored drops leave
// the session untouched.
func (e *Engine) Drop(payload string, x, y float64) drop.Result {
	next, res := e.resolver.Resolve(e.plan.Floorplan, drop.Event{
		Payload: json.RawMessage(payload),
		X:       x,
		Y:       y,
		Floor:   e.floor,
	})
	if !res.Outcome.Committed() {
		return res
	}

	e.commit(floorplan.FloorplanWithStairs{Floorplan: next, Stairs: e.plan.Stairs})
	e.selection = res.Placement.ID
	return res
}

// RemovePlacement deletes a placement. Unknown ids are a no-op.
func (e *Engine) RemovePlacement(id string) {
	if _, ok := e.plan.FindPlacement(id); !ok {
		return
	}
	next := e.plan
	next.Floorplan = floorplan.RemovePlacementByID(e.plan.Floorplan, id)
	e.commit(next)
	if e.selection == id {
		e.selection = ""
	}
}

// RemoveRoom deletes a room and the placements inside it.
func (e *Engine) RemoveRoom(floorID, roomID string) {
	if !e.hasRoom(floorID, roomID) {
		return
	}
	next := e.plan
	next.Floorplan = floorplan.RemoveRoomByID(e.plan.Floorplan, floorID, roomID)
	e.commit(next)
	if _, ok := next.FindPlacement(e.selection); !ok {
		e.selection = ""
	}
}

func (e *Engine) hasRoom(floorID, roomID string) bool {
	floor, ok := e.plan.FloorByIndex(e.plan.FloorIndex(floorID))
	if !ok {
		return false
	}
	for _, r := range floor.Rooms {
		if r.ID == roomID {
			return true
		}
	}
	return false
}

// AddStairs upserts a stair marker given as JSON. The floor index is taken
// from the stair's floor id, not from the input.
func (e *Engine) AddStairs(jsonData string) error {
	var s floorplan.Stair
	if err := json.Unmarshal([]byte(jsonData), &s); err != nil {
		return err
	}
	if err := floorplan.CheckStairRefs(e.plan.Floorplan, s); err != nil {
		return err
	}
	s.FloorIndex = e.plan.FloorIndex(s.FloorID)
	e.commit(floorplan.AddStairs(e.plan, s))
	return nil
}

func (e *Engine) RemoveStairs(id string) {
	for _, s := range e.plan.Stairs {
		if s.ID == id {
			e.commit(floorplan.RemoveStairsByID(e.plan, id))
			return
		}
	}
}

// Undo steps back one edit. Returns false when there is nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	e.redo = append(e.redo, e.plan)
	e.plan = e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	return true
}

// Redo reapplies the last undone edit.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	e.undo = append(e.undo, e.plan)
	e.plan = e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	return true
}

// commit makes next the current snapshot and records the previous one.
// Snapshots are immutable values, so history holds them without copying.
func (e *Engine) commit(next floorplan.FloorplanWithStairs) {
	e.undo = append(e.undo, e.plan)
	if len(e.undo) > maxHistory {
		e.undo = e.undo[len(e.undo)-maxHistory:]
	}
	e.redo = nil
	e.plan = next
}

// --- Queries (frontend ← backend) ---

// Floorplan returns the current snapshot.
func (e *Engine) Floorplan() floorplan.FloorplanWithStairs {
	return e.plan
}

// GetFloorplan returns the current snapshot as JSON (for persistence/sync).
func (e *Engine) GetFloorplan() string {
	if !e.loaded {
		return "{}"
	}
	data, err := floorplan.Encode(e.plan)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Validate returns the invalid placements as JSON.
func (e *Engine) Validate() string {
	data, _ := json.Marshal(e.catalog.Validate(e.plan.Floorplan))
	return string(data)
}

// Markers returns the marker draw commands for the active floor as JSON.
func (e *Engine) Markers() string {
	result, _ := MarkersToJSON(CompileMarkers(e.plan.Floorplan, e.catalog, e.floor, e.selection))
	return result
}

// HitTest returns the id of the topmost marker under x, y on the active floor,
// or an empty string.
func (e *Engine) HitTest(x, y float64) string {
	return HitTest(CompileMarkers(e.plan.Floorplan, e.catalog, e.floor, e.selection), x, y)
}

// PreviewSnap returns, as JSON, where a device of the given type would land if
// dropped at x, y, or "null" when it would be ignored.
func (e *Engine) PreviewSnap(deviceType string, x, y float64) string {
	p, ok := e.resolver.Preview(e.plan.Floorplan, deviceType, e.floor, x, y)
	if !ok {
		return "null"
	}
	data, _ := json.Marshal(compileMarker(e.plan.Floorplan, e.catalog, p, false))
	return string(data)
}

// GetCatalog returns the device catalog as JSON for the palette.
func (e *Engine) GetCatalog() string {
	data, _ := json.Marshal(e.catalog.Devices())
	return string(data)
}

// GetFloor returns the active floor index.
func (e *Engine) GetFloor() int {
	return e.floor
}

func (e *Engine) GetSelection() string {
	return e.selection
}

// CanUndo and CanRedo drive the toolbar state.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }
