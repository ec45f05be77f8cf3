package floorplan

import (
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
	"github.com/siteplan/siteplan/backend-go/internal/typeid"
)

// NewEmpty returns a floorplan with one empty ground floor.
func NewEmpty() FloorplanWithStairs {
	return FloorplanWithStairs{
		Floorplan: Floorplan{
			Version: CurrentVersion,
			Floors: []Floor{
				{ID: typeid.NewFloorID(), Label: "Ground floor", Rooms: []Room{}},
			},
			Placements: []DevicePlacement{},
		},
		Stairs: []Stair{},
	}
}

// NewSample returns a small two-storey house used by the playground.
func NewSample() FloorplanWithStairs {
	groundID := typeid.NewFloorID()
	upperID := typeid.NewFloorID()

	hall := NewRoom(typeid.NewRoomID(), "Hall", geometry.Rect{X: 0, Y: 0, W: 160, H: 240})
	hall.Doors = []Door{
		NewDoor(typeid.NewDoorID(), geometry.WallSouth, 0.5, true),
		NewDoor(typeid.NewDoorID(), geometry.WallEast, 0.3, false),
	}

	living := NewRoom(typeid.NewRoomID(), "Living room", geometry.Rect{X: 160, Y: 0, W: 320, H: 240})
	living.Doors = []Door{NewDoor(typeid.NewDoorID(), geometry.WallWest, 0.3, false)}
	living.Windows = []Window{
		NewWindow(typeid.NewWindowID(), geometry.WallNorth, 0.25),
		NewWindow(typeid.NewWindowID(), geometry.WallNorth, 0.75),
	}

	kitchen := NewRoom(typeid.NewRoomID(), "Kitchen", geometry.Rect{X: 0, Y: 240, W: 480, H: 180})
	kitchen.Doors = []Door{NewDoor(typeid.NewDoorID(), geometry.WallEast, 0.6, true)}
	kitchen.Windows = []Window{NewWindow(typeid.NewWindowID(), geometry.WallSouth, 0.5)}

	bedroom := NewRoom(typeid.NewRoomID(), "Bedroom", geometry.Rect{X: 0, Y: 0, W: 260, H: 220})
	bedroom.Windows = []Window{NewWindow(typeid.NewWindowID(), geometry.WallNorth, 0.5)}

	bath := NewRoom(typeid.NewRoomID(), "Bathroom", geometry.Rect{X: 260, Y: 0, W: 220, H: 220})

	return FloorplanWithStairs{
		Floorplan: Floorplan{
			Version: CurrentVersion,
			Floors: []Floor{
				{ID: groundID, Label: "Ground floor", Rooms: []Room{hall, living, kitchen}},
				{ID: upperID, Label: "First floor", Rooms: []Room{bedroom, bath}},
			},
			Placements: []DevicePlacement{},
		},
		Stairs: []Stair{
			{ID: typeid.NewStairID(), FloorID: groundID, FloorIndex: 1, Position: geometry.Point{X: 80, Y: 40}, Direction: StairsUp},
			{ID: typeid.NewStairID(), FloorID: upperID, FloorIndex: 2, Position: geometry.Point{X: 80, Y: 40}, Direction: StairsDown},
		},
	}
}
