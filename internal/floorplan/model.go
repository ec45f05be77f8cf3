package floorplan

import (
	"strings"

	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

// CurrentVersion tags the persisted format.
const CurrentVersion = "1"

// Floorplan is the root aggregate: floors of rooms plus the device placements
// made on them.
type Floorplan struct {
	Version    string            `json:"version"`
	Floors     []Floor           `json:"floors"`
	Placements []DevicePlacement `json:"placements"`
}

// FloorplanWithStairs extends Floorplan with stair markers. Code that has no
// use for stairs works on the embedded Floorplan.
type FloorplanWithStairs struct {
	Floorplan
	Stairs []Stair `json:"stairs"`
}

type Floor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Rooms []Room `json:"rooms"`
}

type Room struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Rect    geometry.Rect `json:"rect"`
	Doors   []Door        `json:"doors"`
	Windows []Window      `json:"windows"`
}

// Door sits on one wall of a room at a fractional offset measured from the
// wall's start corner (west end for n/s, north end for e/w).
type Door struct {
	ID       string        `json:"id"`
	Wall     geometry.Wall `json:"wall"`
	Offset   float64       `json:"offset"`
	Exterior bool          `json:"exterior"`
}

type Window struct {
	ID     string        `json:"id"`
	Wall   geometry.Wall `json:"wall"`
	Offset float64       `json:"offset"`
}

// DevicePlacement is one device marker on the plan. Floor is the 1-based
// position of the floor in Floorplan.Floors. WallID is set only for
// wall-anchored devices. A nil Rotation means "derive from the wall".
type DevicePlacement struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Floor    int      `json:"floor"`
	RoomID   string   `json:"roomId"`
	WallID   string   `json:"wallId,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation *float64 `json:"rotation,omitempty"`
}

type StairDirection string

const (
	StairsUp   StairDirection = "up"
	StairsDown StairDirection = "down"
)

type Stair struct {
	ID         string         `json:"id"`
	FloorID    string         `json:"floorId"`
	FloorIndex int            `json:"floorIndex"`
	Position   geometry.Point `json:"position"`
	Direction  StairDirection `json:"direction"`
}

// NewDoor builds a door with its offset clamped to [0, 1].
func NewDoor(id string, wall geometry.Wall, offset float64, exterior bool) Door {
	return Door{ID: id, Wall: wall, Offset: geometry.Clamp01(offset), Exterior: exterior}
}

// NewWindow builds a window with its offset clamped to [0, 1].
func NewWindow(id string, wall geometry.Wall, offset float64) Window {
	return Window{ID: id, Wall: wall, Offset: geometry.Clamp01(offset)}
}

// NewRoom builds a room with a non-negative rect.
func NewRoom(id, name string, rect geometry.Rect) Room {
	return Room{
		ID:      id,
		Name:    name,
		Rect:    rect.Normalize(),
		Doors:   []Door{},
		Windows: []Window{},
	}
}

// Rotation returns a pointer suitable for DevicePlacement.Rotation.
func Rotation(degrees float64) *float64 {
	return &degrees
}

// WallID joins a room id and a wall into a placement wall reference.
func WallID(roomID string, wall geometry.Wall) string {
	return roomID + "-" + string(wall)
}

// ParseWallID splits a wall reference on its last dash. Room ids may contain
// dashes themselves.
func ParseWallID(id string) (string, geometry.Wall, bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 {
		return "", "", false
	}
	wall := geometry.Wall(id[i+1:])
	if !wall.Valid() {
		return "", "", false
	}
	return id[:i], wall, true
}

// FloorByIndex returns the floor at a 1-based display index.
func (fp Floorplan) FloorByIndex(index int) (Floor, bool) {
	if index < 1 || index > len(fp.Floors) {
		return Floor{}, false
	}
	return fp.Floors[index-1], true
}

// FloorIndex returns the 1-based index of the floor with the given id, or 0.
func (fp Floorplan) FloorIndex(floorID string) int {
	for i, f := range fp.Floors {
		if f.ID == floorID {
			return i + 1
		}
	}
	return 0
}

// FindRoom searches every floor for a room.
func (fp Floorplan) FindRoom(roomID string) (Room, bool) {
	for _, f := range fp.Floors {
		for _, r := range f.Rooms {
			if r.ID == roomID {
				return r, true
			}
		}
	}
	return Room{}, false
}

func (fp Floorplan) FindPlacement(id string) (DevicePlacement, bool) {
	for _, p := range fp.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return DevicePlacement{}, false
}

// HasExteriorDoor reports whether the room has an exterior door on wall.
func (r Room) HasExteriorDoor(wall geometry.Wall) bool {
	for _, d := range r.Doors {
		if d.Exterior && d.Wall == wall {
			return true
		}
	}
	return false
}
