// Package snap positions device markers inside rooms: flush to the nearest
// wall, in a padded interior, or at an inset corner.
package snap

import (
	"math"

	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

const (
	// DefaultPadding keeps interior and corner markers off the walls.
	DefaultPadding = 12.0
	// DefaultInset pulls wall markers into the room so the icon is not cut by
	// the wall line.
	DefaultInset = 12.0
)

// WallSnap is a point on a room wall plus its fractional position along it.
type WallSnap struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Wall   geometry.Wall `json:"wall"`
	Offset float64       `json:"offset"`
}

// Point returns the snapped position.
func (s WallSnap) Point() geometry.Point {
	return geometry.Point{X: s.X, Y: s.Y}
}

// FindRoomForPoint returns the first room on the floor containing p. Rooms are
// assumed not to overlap; when they do, array order decides.
func FindRoomForPoint(floor floorplan.Floor, p geometry.Point) (floorplan.Room, bool) {
	for _, room := range floor.Rooms {
		if geometry.PointInRect(p, room.Rect) {
			return room, true
		}
	}
	return floorplan.Room{}, false
}

// SnapToWall moves p onto the nearest wall of room. Wall distances use the
// unclamped point so a pointer dragged past an edge snaps to that edge; the
// along-wall coordinate comes from the clamped point.
func SnapToWall(room floorplan.Room, p geometry.Point) WallSnap {
	r := room.Rect
	clamped := geometry.ClampPointToRect(p, r)

	nearest := geometry.Walls[0]
	best := geometry.DistanceToEdge(p, r, nearest)
	for _, wall := range geometry.Walls[1:] {
		if d := geometry.DistanceToEdge(p, r, wall); d < best {
			nearest, best = wall, d
		}
	}

	snap := WallSnap{Wall: nearest}
	switch nearest {
	case geometry.WallNorth:
		snap.X, snap.Y = clamped.X, r.Y
		snap.Offset = fraction(clamped.X-r.X, r.W)
	case geometry.WallSouth:
		snap.X, snap.Y = clamped.X, r.Y+r.H
		snap.Offset = fraction(clamped.X-r.X, r.W)
	case geometry.WallWest:
		snap.X, snap.Y = r.X, clamped.Y
		snap.Offset = fraction(clamped.Y-r.Y, r.H)
	case geometry.WallEast:
		snap.X, snap.Y = r.X+r.W, clamped.Y
		snap.Offset = fraction(clamped.Y-r.Y, r.H)
	}
	return snap
}

// SnapToInterior clamps p into the room shrunk by padding on every side. An
// axis narrower than twice the padding has no valid range; the marker is
// centred on that axis instead.
func SnapToInterior(room floorplan.Room, p geometry.Point, padding float64) geometry.Point {
	r := room.Rect
	c := r.Center()
	return geometry.Point{
		X: clampPadded(p.X, r.X, r.W, padding, c.X),
		Y: clampPadded(p.Y, r.Y, r.H, padding, c.Y),
	}
}

// SnapToCorner returns the inset room corner closest to p. The inset is capped
// at half the room size so corners never cross over in small rooms. All four
// corners are inset the same way (x+inset and x+w-inset), so the left corners
// do not sit on the wall line at rect.x as they did in the asymmetric formula.
func SnapToCorner(room floorplan.Room, p geometry.Point, padding float64) geometry.Point {
	r := room.Rect
	inset := min(padding, r.W/2, r.H/2)

	left, right := r.X+inset, r.X+r.W-inset
	top, bottom := r.Y+inset, r.Y+r.H-inset
	corners := [4]geometry.Point{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: left, Y: bottom},
		{X: right, Y: bottom},
	}

	best := corners[0]
	bestDist := math.Inf(1)
	for _, c := range corners {
		if d := math.Hypot(c.X-p.X, c.Y-p.Y); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// WallInsetPosition places a marker at offset along the snapped wall, pulled
// into the room by inset (capped at half the room size).
func WallInsetPosition(r geometry.Rect, snap WallSnap, inset float64) geometry.Point {
	inset = min(inset, r.W/2, r.H/2)
	offset := geometry.Clamp01(snap.Offset)

	switch snap.Wall {
	case geometry.WallNorth:
		return geometry.Point{X: r.X + offset*r.W, Y: r.Y + inset}
	case geometry.WallSouth:
		return geometry.Point{X: r.X + offset*r.W, Y: r.Y + r.H - inset}
	case geometry.WallWest:
		return geometry.Point{X: r.X + inset, Y: r.Y + offset*r.H}
	case geometry.WallEast:
		return geometry.Point{X: r.X + r.W - inset, Y: r.Y + offset*r.H}
	}
	return r.Center()
}

func fraction(v, length float64) float64 {
	if length <= 0 {
		return 0
	}
	return geometry.Clamp01(v / length)
}

func clampPadded(v, start, size, padding, center float64) float64 {
	if size < 2*padding {
		return center
	}
	return min(max(v, start+padding), start+size-padding)
}

// FromPlacement recovers the wall snap of a wall-mounted placement from its
// wall reference and position. ok is false when the placement has no usable
// wall reference for room.
func FromPlacement(room floorplan.Room, p floorplan.DevicePlacement) (WallSnap, bool) {
	roomID, wall, ok := floorplan.ParseWallID(p.WallID)
	if !ok || roomID != room.ID {
		return WallSnap{}, false
	}
	r := room.Rect
	s := WallSnap{X: p.X, Y: p.Y, Wall: wall}
	if wall.Horizontal() {
		s.Offset = fraction(p.X-r.X, r.W)
	} else {
		s.Offset = fraction(p.Y-r.Y, r.H)
	}
	return s, true
}
