package snap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

func room(x, y, w, h float64) floorplan.Room {
	return floorplan.NewRoom("room-1", "Room", geometry.Rect{X: x, Y: y, W: w, H: h})
}

func TestFindRoomForPoint(t *testing.T) {
	a := floorplan.NewRoom("a", "A", geometry.Rect{X: 0, Y: 0, W: 100, H: 100})
	b := floorplan.NewRoom("b", "B", geometry.Rect{X: 100, Y: 0, W: 100, H: 100})
	overlap := floorplan.NewRoom("c", "C", geometry.Rect{X: 50, Y: 50, W: 100, H: 100})
	floor := floorplan.Floor{ID: "f", Rooms: []floorplan.Room{a, b, overlap}}

	tests := []struct {
		name   string
		p      geometry.Point
		wantID string
		wantOK bool
	}{
		{"strictly inside a", geometry.Point{X: 10, Y: 10}, "a", true},
		{"strictly inside b", geometry.Point{X: 150, Y: 20}, "b", true},
		{"shared edge goes to first room", geometry.Point{X: 100, Y: 20}, "a", true},
		{"overlap goes to first room", geometry.Point{X: 60, Y: 60}, "a", true},
		{"outside every room", geometry.Point{X: 500, Y: 500}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindRoomForPoint(floor, tt.p)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestSnapToWall(t *testing.T) {
	r := room(0, 0, 200, 100)

	tests := []struct {
		name string
		p    geometry.Point
		want WallSnap
	}{
		{"near north wall", geometry.Point{X: 50, Y: 4}, WallSnap{X: 50, Y: 0, Wall: geometry.WallNorth, Offset: 0.25}},
		{"outside east wall", geometry.Point{X: 300, Y: 50}, WallSnap{X: 200, Y: 50, Wall: geometry.WallEast, Offset: 0.5}},
		{"near south wall", geometry.Point{X: 150, Y: 98}, WallSnap{X: 150, Y: 100, Wall: geometry.WallSouth, Offset: 0.75}},
		{"near west wall", geometry.Point{X: 2, Y: 25}, WallSnap{X: 0, Y: 25, Wall: geometry.WallWest, Offset: 0.25}},
		{"tie prefers north over west", geometry.Point{X: 10, Y: 10}, WallSnap{X: 10, Y: 0, Wall: geometry.WallNorth, Offset: 0.05}},
		{"tie prefers south over east", geometry.Point{X: 190, Y: 90}, WallSnap{X: 190, Y: 100, Wall: geometry.WallSouth, Offset: 0.95}},
		{"above north-west corner clamps offset", geometry.Point{X: -20, Y: -30}, WallSnap{X: 0, Y: 0, Wall: geometry.WallNorth, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToWall(r, tt.p)
			assert.Equal(t, tt.want.Wall, got.Wall)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Offset, got.Offset, 1e-9)
		})
	}
}

func TestSnapToWall_OffsetAlwaysInRange(t *testing.T) {
	r := room(10, 10, 50, 30)
	for _, p := range []geometry.Point{{X: -100, Y: 0}, {X: 1000, Y: 25}, {X: 35, Y: 1000}, {X: 35, Y: -1000}} {
		s := SnapToWall(r, p)
		assert.GreaterOrEqual(t, s.Offset, 0.0)
		assert.LessOrEqual(t, s.Offset, 1.0)
		assert.True(t, geometry.PointInRect(s.Point(), r.Rect))
	}
}

func TestSnapToInterior(t *testing.T) {
	r := room(0, 0, 200, 100)

	assert.Equal(t, geometry.Point{X: 12, Y: 12}, SnapToInterior(r, geometry.Point{X: 0, Y: 0}, DefaultPadding))
	assert.Equal(t, geometry.Point{X: 188, Y: 88}, SnapToInterior(r, geometry.Point{X: 500, Y: 500}, DefaultPadding))
	assert.Equal(t, geometry.Point{X: 80, Y: 40}, SnapToInterior(r, geometry.Point{X: 80, Y: 40}, DefaultPadding))
}

func TestSnapToInterior_SmallRoomCentres(t *testing.T) {
	narrow := room(0, 0, 20, 100)

	got := SnapToInterior(narrow, geometry.Point{X: 2, Y: 2}, DefaultPadding)

	assert.Equal(t, 10.0, got.X, "axis narrower than twice the padding is centred")
	assert.Equal(t, 12.0, got.Y, "wide axis is still padded")
}

func TestSnapToCorner(t *testing.T) {
	r := room(0, 0, 200, 100)

	tests := []struct {
		name string
		p    geometry.Point
		want geometry.Point
	}{
		{"top-left", geometry.Point{X: 20, Y: 20}, geometry.Point{X: 12, Y: 12}},
		{"top-right", geometry.Point{X: 190, Y: 5}, geometry.Point{X: 188, Y: 12}},
		{"bottom-left", geometry.Point{X: 30, Y: 80}, geometry.Point{X: 12, Y: 88}},
		{"bottom-right from outside", geometry.Point{X: 400, Y: 400}, geometry.Point{X: 188, Y: 88}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapToCorner(r, tt.p, DefaultPadding))
		})
	}
}

func TestSnapToCorner_SmallRoom(t *testing.T) {
	tiny := room(0, 0, 10, 40)

	got := SnapToCorner(tiny, geometry.Point{X: 0, Y: 0}, DefaultPadding)

	assert.Equal(t, geometry.Point{X: 5, Y: 5}, got)
}

func TestWallInsetPosition(t *testing.T) {
	r := geometry.Rect{X: 0, Y: 0, W: 200, H: 100}

	tests := []struct {
		name string
		snap WallSnap
		want geometry.Point
	}{
		{"north", WallSnap{Wall: geometry.WallNorth, Offset: 0.25}, geometry.Point{X: 50, Y: 12}},
		{"south", WallSnap{Wall: geometry.WallSouth, Offset: 0.5}, geometry.Point{X: 100, Y: 88}},
		{"west", WallSnap{Wall: geometry.WallWest, Offset: 0.5}, geometry.Point{X: 12, Y: 50}},
		{"east", WallSnap{Wall: geometry.WallEast, Offset: 1}, geometry.Point{X: 188, Y: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WallInsetPosition(r, tt.snap, DefaultInset))
		})
	}
}

func TestWallInsetPosition_CappedForSmallRooms(t *testing.T) {
	r := geometry.Rect{X: 0, Y: 0, W: 100, H: 10}

	got := WallInsetPosition(r, WallSnap{Wall: geometry.WallNorth, Offset: 0.5}, DefaultInset)

	assert.Equal(t, geometry.Point{X: 50, Y: 5}, got)
}

func TestRotationForWall(t *testing.T) {
	assert.Equal(t, 0.0, RotationForWall(geometry.WallSouth))
	assert.Equal(t, 270.0, RotationForWall(geometry.WallEast))
	assert.Equal(t, 180.0, RotationForWall(geometry.WallNorth))
	assert.Equal(t, 90.0, RotationForWall(geometry.WallWest))
}

func TestPlacementRotation(t *testing.T) {
	t.Run("explicit rotation wins over wall", func(t *testing.T) {
		p := floorplan.DevicePlacement{Rotation: floorplan.Rotation(45), WallID: "room-1-s"}
		assert.Equal(t, 45.0, PlacementRotation(p))
	})

	t.Run("explicit zero wins", func(t *testing.T) {
		p := floorplan.DevicePlacement{Rotation: floorplan.Rotation(0), WallID: "room-1-w"}
		assert.Equal(t, 0.0, PlacementRotation(p))
	})

	t.Run("derived from wall", func(t *testing.T) {
		p := floorplan.DevicePlacement{WallID: "room-1-w"}
		assert.Equal(t, 90.0, PlacementRotation(p))
	})

	t.Run("neither set", func(t *testing.T) {
		require.Equal(t, 0.0, PlacementRotation(floorplan.DevicePlacement{}))
	})
}

func TestFromPlacement(t *testing.T) {
	r := room(0, 0, 200, 100)

	s, ok := FromPlacement(r, floorplan.DevicePlacement{RoomID: "room-1", WallID: "room-1-e", X: 200, Y: 25})
	require.True(t, ok)
	assert.Equal(t, geometry.WallEast, s.Wall)
	assert.Equal(t, 0.25, s.Offset)

	s, ok = FromPlacement(r, floorplan.DevicePlacement{RoomID: "room-1", WallID: "room-1-s", X: 150, Y: 100})
	require.True(t, ok)
	assert.Equal(t, 0.75, s.Offset)

	_, ok = FromPlacement(r, floorplan.DevicePlacement{RoomID: "room-1"})
	assert.False(t, ok)
	_, ok = FromPlacement(r, floorplan.DevicePlacement{RoomID: "room-1", WallID: "room-2-n"})
	assert.False(t, ok)
}
