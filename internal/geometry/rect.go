package geometry

// Point is a position in floor space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in floor space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Wall names one side of a rectangle.
type Wall string

const (
	WallNorth Wall = "n"
	WallSouth Wall = "s"
	WallEast  Wall = "e"
	WallWest  Wall = "w"
)

// Walls lists the walls in declaration order. Nearest-wall ties resolve to
// the earliest entry.
var Walls = [4]Wall{WallNorth, WallSouth, WallWest, WallEast}

// Valid reports whether w is one of the four cardinal walls.
func (w Wall) Valid() bool {
	switch w {
	case WallNorth, WallSouth, WallEast, WallWest:
		return true
	}
	return false
}

// Horizontal reports whether the wall runs west to east.
func (w Wall) Horizontal() bool {
	return w == WallNorth || w == WallSouth
}

// PointInRect reports whether p lies inside r, boundary included.
func PointInRect(p Point, r Rect) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// ClampPointToRect clamps each axis of p into r.
func ClampPointToRect(p Point, r Rect) Point {
	return Point{
		X: clamp(p.X, r.X, r.X+r.W),
		Y: clamp(p.Y, r.Y, r.Y+r.H),
	}
}

// DistanceToEdge returns the perpendicular distance from p to the line of the
// given wall. The result is positive on the room side of the wall and negative
// beyond it, so a point dragged outside the room is nearest to the wall it
// crossed.
func DistanceToEdge(p Point, r Rect, wall Wall) float64 {
	switch wall {
	case WallNorth:
		return p.Y - r.Y
	case WallSouth:
		return r.Y + r.H - p.Y
	case WallWest:
		return p.X - r.X
	case WallEast:
		return r.X + r.W - p.X
	}
	return 0
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.W, other.X+other.W)
	maxY := max(r.Y+r.H, other.Y+other.H)

	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Normalize returns r with negative sizes collapsed to zero.
func (r Rect) Normalize() Rect {
	r.W = max(r.W, 0)
	r.H = max(r.H, 0)
	return r
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
