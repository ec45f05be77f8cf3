package floorplan

import (
	"errors"
	"fmt"
)

var (
	ErrMissingID         = errors.New("missing id")
	ErrUnknownFloor      = errors.New("unknown floor")
	ErrUnknownRoom       = errors.New("unknown room")
	ErrBadWallRef        = errors.New("wall reference does not match room")
	ErrBadStairDirection = errors.New("stair direction must be up or down")
)

// CheckPlacementRefs reports whether p can be stored in fp without leaving a
// dangling reference: the floor index and room must exist, the room must be on
// that floor, and a wall reference must name the same room.
func CheckPlacementRefs(fp Floorplan, p DevicePlacement) error {
	if p.ID == "" {
		return ErrMissingID
	}
	floor, ok := fp.FloorByIndex(p.Floor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFloor, p.Floor)
	}
	found := false
	for _, r := range floor.Rooms {
		if r.ID == p.RoomID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, p.RoomID)
	}
	if p.WallID == "" {
		return nil
	}
	roomID, _, ok := ParseWallID(p.WallID)
	if !ok || roomID != p.RoomID {
		return fmt.Errorf("%w: %s", ErrBadWallRef, p.WallID)
	}
	return nil
}

// CheckStairRefs reports whether s names an existing floor and a known
// direction. FloorIndex is derived from FloorID by the caller.
func CheckStairRefs(fp Floorplan, s Stair) error {
	if s.ID == "" {
		return ErrMissingID
	}
	if fp.FloorIndex(s.FloorID) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownFloor, s.FloorID)
	}
	if s.Direction != StairsUp && s.Direction != StairsDown {
		return ErrBadStairDirection
	}
	return nil
}
