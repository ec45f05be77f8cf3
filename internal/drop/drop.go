// Package drop turns a pointer drop on the canvas into a committed device
// placement. Drops that cannot be resolved are ignored, never reported as
// errors: dropping outside a room is an ordinary gesture.
package drop

import (
	"encoding/json"
	"errors"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
	"github.com/siteplan/siteplan/backend-go/internal/snap"
	"github.com/siteplan/siteplan/backend-go/internal/typeid"
)

// Payload is what the palette or an existing marker puts on the drag. Exactly
// one of Type (new device) or PlacementID (reposition) is set.
type Payload struct {
	Type        string `json:"type,omitempty"`
	PlacementID string `json:"placementId,omitempty"`
}

// Event is a drop at X, Y in floor space on the 1-based floor index.
type Event struct {
	Payload json.RawMessage `json:"payload"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Floor   int             `json:"floor"`
}

type Outcome string

const (
	OutcomePlaced                  Outcome = "placed"
	OutcomeMoved                   Outcome = "moved"
	OutcomeIgnoredPayload          Outcome = "ignored_payload"
	OutcomeIgnoredFloor            Outcome = "ignored_floor"
	OutcomeIgnoredNoRoom           Outcome = "ignored_no_room"
	OutcomeIgnoredUnknownDevice    Outcome = "ignored_unknown_device"
	OutcomeIgnoredUnknownPlacement Outcome = "ignored_unknown_placement"
)

// Committed reports whether the drop changed the floorplan.
func (o Outcome) Committed() bool {
	return o == OutcomePlaced || o == OutcomeMoved
}

type Result struct {
	Outcome   Outcome                   `json:"outcome"`
	Placement floorplan.DevicePlacement `json:"placement"`
}

var ErrInvalidPayload = errors.New("invalid drop payload")

// ParsePayload decodes a drag payload. Payloads naming neither a device type
// nor a placement are rejected.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, ErrInvalidPayload
	}
	if p.Type == "" && p.PlacementID == "" {
		return Payload{}, ErrInvalidPayload
	}
	return p, nil
}

// Resolver resolves drops against a device catalog.
type Resolver struct {
	catalog *catalog.Catalog
	newID   func() string
}

// NewResolver creates a resolver. A nil catalog means the built-in one.
func NewResolver(c *catalog.Catalog) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	return &Resolver{catalog: c, newID: typeid.NewPlacementID}
}

// WithIDs replaces the id generator used for new placements.
func (r *Resolver) WithIDs(newID func() string) *Resolver {
	r.newID = newID
	return r
}

// Resolve places or moves a device. Ignored drops return fp unchanged.
func (r *Resolver) Resolve(fp floorplan.Floorplan, ev Event) (floorplan.Floorplan, Result) {
	payload, err := ParsePayload(ev.Payload)
	if err != nil {
		return fp, Result{Outcome: OutcomeIgnoredPayload}
	}

	floor, ok := fp.FloorByIndex(ev.Floor)
	if !ok {
		return fp, Result{Outcome: OutcomeIgnoredFloor}
	}

	point := geometry.Point{X: ev.X, Y: ev.Y}
	room, ok := snap.FindRoomForPoint(floor, point)
	if !ok {
		return fp, Result{Outcome: OutcomeIgnoredNoRoom}
	}

	placement := floorplan.DevicePlacement{Type: payload.Type}
	outcome := OutcomePlaced
	if payload.PlacementID != "" {
		existing, ok := fp.FindPlacement(payload.PlacementID)
		if !ok {
			return fp, Result{Outcome: OutcomeIgnoredUnknownPlacement}
		}
		placement = floorplan.DevicePlacement{
			ID:       existing.ID,
			Type:     existing.Type,
			Rotation: existing.Rotation,
		}
		outcome = OutcomeMoved
	}

	device, ok := r.catalog.Lookup(placement.Type)
	if !ok {
		return fp, Result{Outcome: OutcomeIgnoredUnknownDevice}
	}

	if placement.ID == "" {
		placement.ID = r.newID()
	}
	placement.Floor = ev.Floor
	placement.RoomID = room.ID
	anchorPlacement(&placement, device.Anchor, room, point)

	return floorplan.PlaceDevice(fp, placement), Result{Outcome: outcome, Placement: placement}
}

// anchorPlacement positions p inside room according to the device's anchor.
func anchorPlacement(p *floorplan.DevicePlacement, anchor catalog.Anchor, room floorplan.Room, point geometry.Point) {
	p.WallID = ""
	switch anchor {
	case catalog.AnchorWall:
		s := snap.SnapToWall(room, point)
		p.X, p.Y = s.X, s.Y
		p.WallID = floorplan.WallID(room.ID, s.Wall)
	case catalog.AnchorCorner:
		c := snap.SnapToCorner(room, point, snap.DefaultPadding)
		p.X, p.Y = c.X, c.Y
	default:
		c := snap.SnapToInterior(room, point, snap.DefaultPadding)
		p.X, p.Y = c.X, c.Y
	}
}

// Preview returns where a device of the given type would land without
// committing it. ok is false when the drop would be ignored.
func (r *Resolver) Preview(fp floorplan.Floorplan, deviceType string, floorIndex int, x, y float64) (floorplan.DevicePlacement, bool) {
	floor, ok := fp.FloorByIndex(floorIndex)
	if !ok {
		return floorplan.DevicePlacement{}, false
	}
	device, ok := r.catalog.Lookup(deviceType)
	if !ok {
		return floorplan.DevicePlacement{}, false
	}
	point := geometry.Point{X: x, Y: y}
	room, ok := snap.FindRoomForPoint(floor, point)
	if !ok {
		return floorplan.DevicePlacement{}, false
	}

	p := floorplan.DevicePlacement{Type: deviceType, Floor: floorIndex, RoomID: room.ID}
	anchorPlacement(&p, device.Anchor, room, point)
	return p, true
}
