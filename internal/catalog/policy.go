package catalog

import (
	"errors"

	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
)

var (
	ErrUnknownDevice  = errors.New("unknown device type")
	ErrRoomNotFound   = errors.New("room not found")
	ErrMissingWall    = errors.New("wall-mounted device has no wall")
	ErrWallMismatch   = errors.New("wall does not belong to the placement's room")
	ErrNoExteriorDoor = errors.New("doorbell is not next to an exterior door")
)

// Issue describes why one placement is invalid.
type Issue struct {
	PlacementID string `json:"placementId"`
	Reason      string `json:"reason"`
}

// Check returns nil when the placement satisfies the placement rules against
// the current floorplan, or the first rule it breaks. The result depends on
// room and door state and must be recomputed after every edit.
func (c *Catalog) Check(p floorplan.DevicePlacement, fp floorplan.Floorplan) error {
	device, ok := c.Lookup(p.Type)
	if !ok {
		return ErrUnknownDevice
	}

	room, ok := fp.FindRoom(p.RoomID)
	if !ok {
		return ErrRoomNotFound
	}

	if device.Anchor != AnchorWall {
		return nil
	}
	if p.WallID == "" {
		return ErrMissingWall
	}
	roomID, wall, ok := floorplan.ParseWallID(p.WallID)
	if !ok || roomID != p.RoomID {
		return ErrWallMismatch
	}

	if device.Type == DeviceDoorbell && !room.HasExteriorDoor(wall) {
		return ErrNoExteriorDoor
	}
	return nil
}

func (c *Catalog) IsPlacementValid(p floorplan.DevicePlacement, fp floorplan.Floorplan) bool {
	return c.Check(p, fp) == nil
}

// Validate lists every invalid placement in array order.
func (c *Catalog) Validate(fp floorplan.Floorplan) []Issue {
	issues := []Issue{}
	for _, p := range fp.Placements {
		if err := c.Check(p, fp); err != nil {
			issues = append(issues, Issue{PlacementID: p.ID, Reason: err.Error()})
		}
	}
	return issues
}

// IsPlacementValid checks a placement against the built-in catalog.
func IsPlacementValid(p floorplan.DevicePlacement, fp floorplan.Floorplan) bool {
	return Default().IsPlacementValid(p, fp)
}
