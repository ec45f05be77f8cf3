package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

func planWithDoors(doors ...floorplan.Door) floorplan.Floorplan {
	hall := floorplan.NewRoom("room-1", "Hall", geometry.Rect{X: 0, Y: 0, W: 200, H: 100})
	hall.Doors = doors
	return floorplan.Floorplan{
		Version: floorplan.CurrentVersion,
		Floors:  []floorplan.Floor{{ID: "floor-1", Label: "Ground", Rooms: []floorplan.Room{hall}}},
	}
}

func TestCheck(t *testing.T) {
	fp := planWithDoors(floorplan.NewDoor("d1", geometry.WallSouth, 0.5, true))

	tests := []struct {
		name string
		p    floorplan.DevicePlacement
		want error
	}{
		{"unknown type", floorplan.DevicePlacement{Type: "toaster", RoomID: "room-1"}, ErrUnknownDevice},
		{"missing room", floorplan.DevicePlacement{Type: "smoke_detector", RoomID: "room-9"}, ErrRoomNotFound},
		{"interior device", floorplan.DevicePlacement{Type: "smoke_detector", RoomID: "room-1"}, nil},
		{"corner device without wall", floorplan.DevicePlacement{Type: "motion_sensor", RoomID: "room-1"}, nil},
		{"wall device without wall", floorplan.DevicePlacement{Type: "contact_sensor", RoomID: "room-1"}, ErrMissingWall},
		{"wall of another room", floorplan.DevicePlacement{Type: "contact_sensor", RoomID: "room-1", WallID: "room-2-n"}, ErrWallMismatch},
		{"malformed wall", floorplan.DevicePlacement{Type: "contact_sensor", RoomID: "room-1", WallID: "room-1-up"}, ErrWallMismatch},
		{"wall device", floorplan.DevicePlacement{Type: "contact_sensor", RoomID: "room-1", WallID: "room-1-n"}, nil},
		{"doorbell by exterior door", floorplan.DevicePlacement{Type: DeviceDoorbell, RoomID: "room-1", WallID: "room-1-s"}, nil},
		{"doorbell on a wall without door", floorplan.DevicePlacement{Type: DeviceDoorbell, RoomID: "room-1", WallID: "room-1-n"}, ErrNoExteriorDoor},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Check(tt.p, fp)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, c.IsPlacementValid(tt.p, fp))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, c.IsPlacementValid(tt.p, fp))
		})
	}
}

func TestDoorbellValidityFollowsDoors(t *testing.T) {
	doorbell := floorplan.DevicePlacement{ID: "p1", Type: DeviceDoorbell, Floor: 1, RoomID: "room-1", WallID: "room-1-e"}

	interiorOnly := planWithDoors(floorplan.NewDoor("d1", geometry.WallEast, 0.5, false))
	assert.False(t, IsPlacementValid(doorbell, interiorOnly))

	withExterior := planWithDoors(
		floorplan.NewDoor("d1", geometry.WallEast, 0.5, false),
		floorplan.NewDoor("d2", geometry.WallEast, 0.8, true),
	)
	assert.True(t, IsPlacementValid(doorbell, withExterior))
}

func TestValidate(t *testing.T) {
	fp := planWithDoors()
	fp.Placements = []floorplan.DevicePlacement{
		{ID: "ok", Type: "siren", Floor: 1, RoomID: "room-1"},
		{ID: "bell", Type: DeviceDoorbell, Floor: 1, RoomID: "room-1", WallID: "room-1-n"},
		{ID: "ghost", Type: "siren", Floor: 1, RoomID: "room-x"},
	}

	issues := Default().Validate(fp)

	assert.Equal(t, []Issue{
		{PlacementID: "bell", Reason: ErrNoExteriorDoor.Error()},
		{PlacementID: "ghost", Reason: ErrRoomNotFound.Error()},
	}, issues)

	fp.Placements = fp.Placements[:1]
	assert.Empty(t, Default().Validate(fp))
}
