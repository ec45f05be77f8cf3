package engine

import (
	"encoding/json"
	"math"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
	"github.com/siteplan/siteplan/backend-go/internal/snap"
)

// MarkerRadius is the hit radius of a device icon in floor units.
const MarkerRadius = 14.0

// MarkerCommand tells the canvas where and how to draw one device icon.
type MarkerCommand struct {
	Op          string         `json:"op"`                 // always "marker"
	PlacementID string         `json:"placementId"`        // For hit correlation
	Type        string         `json:"type"`               // Catalog key, picks the icon
	Label       string         `json:"label"`              // Tooltip
	X           float64        `json:"x"`                  // Icon centre
	Y           float64        `json:"y"`                  // Icon centre
	Rotation    float64        `json:"rotation"`           // Degrees
	Transform   []float64      `json:"transform"`          // [a, b, c, d, e, f] affine matrix
	Facing      geometry.Point `json:"facing"`             // One radius ahead of the icon, aims the view cone
	ViewCone    bool           `json:"viewCone"`           // Draw the viewing cone
	Valid       bool           `json:"valid"`              // False draws the warning badge
	Reason      string         `json:"reason,omitempty"`   // Why the placement is invalid
	Selected    bool           `json:"selected,omitempty"` // Draw the selection ring
}

// CompileMarkers builds the marker list for one floor in placement order, so
// later placements draw on top.
func CompileMarkers(fp floorplan.Floorplan, c *catalog.Catalog, floor int, selection string) []MarkerCommand {
	markers := make([]MarkerCommand, 0, len(fp.Placements))
	for _, p := range fp.Placements {
		if p.Floor != floor {
			continue
		}
		markers = append(markers, compileMarker(fp, c, p, p.ID != "" && p.ID == selection))
	}
	return markers
}

// compileMarker resolves the drawn position of a placement. Wall-mounted
// devices are pulled into the room so the icon clears the wall line. A
// placement whose room is gone is drawn at its stored position.
func compileMarker(fp floorplan.Floorplan, c *catalog.Catalog, p floorplan.DevicePlacement, selected bool) MarkerCommand {
	pos := geometry.Point{X: p.X, Y: p.Y}
	if room, ok := fp.FindRoom(p.RoomID); ok {
		if ws, ok := snap.FromPlacement(room, p); ok {
			pos = snap.WallInsetPosition(room.Rect, ws, snap.DefaultInset)
		}
	}

	rotation := snap.PlacementRotation(p)
	transform := geometry.MarkerTransform(pos, rotation)
	m := MarkerCommand{
		Op:          "marker",
		PlacementID: p.ID,
		Type:        p.Type,
		X:           pos.X,
		Y:           pos.Y,
		Rotation:    rotation,
		Transform:   transform.ToSlice(),
		Facing:      transform.Apply(geometry.Point{X: 0, Y: MarkerRadius}),
		Valid:       true,
		Selected:    selected,
	}

	if device, ok := c.Lookup(p.Type); ok {
		m.Label = device.Label
		m.ViewCone = device.ViewCone
	}
	if err := c.Check(p, fp); err != nil {
		m.Valid = false
		m.Reason = err.Error()
	}
	return m
}

// MarkersToJSON serializes marker commands to JSON.
func MarkersToJSON(markers []MarkerCommand) (string, error) {
	data, err := json.Marshal(markers)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the placement id of the topmost marker within MarkerRadius
// of x, y, or an empty string.
func HitTest(markers []MarkerCommand, x, y float64) string {
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if math.Hypot(m.X-x, m.Y-y) <= MarkerRadius {
			return m.PlacementID
		}
	}
	return ""
}
