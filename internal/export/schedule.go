package export

import (
	"sort"

	"github.com/siteplan/siteplan/backend-go/internal/catalog"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/snap"
)

// Row is one line of the device schedule.
type Row struct {
	PlacementID string
	FloorIndex  int
	Floor       string
	Room        string
	Type        string
	Device      string
	Category    string
	Wall        string
	X           float64
	Y           float64
	Rotation    float64
	Valid       bool
	Reason      string
}

// BuildSchedule lists every placement, ordered by floor and then by position
// in the placement list.
func BuildSchedule(fp floorplan.Floorplan, c *catalog.Catalog) []Row {
	if c == nil {
		c = catalog.Default()
	}

	rows := make([]Row, 0, len(fp.Placements))
	for _, p := range fp.Placements {
		row := Row{
			PlacementID: p.ID,
			FloorIndex:  p.Floor,
			Type:        p.Type,
			Device:      p.Type,
			X:           p.X,
			Y:           p.Y,
			Rotation:    snap.PlacementRotation(p),
			Valid:       true,
		}
		if floor, ok := fp.FloorByIndex(p.Floor); ok {
			row.Floor = floor.Label
		}
		if room, ok := fp.FindRoom(p.RoomID); ok {
			row.Room = room.Name
		}
		if device, ok := c.Lookup(p.Type); ok {
			row.Device = device.Label
			row.Category = string(device.Category)
		}
		if _, wall, ok := floorplan.ParseWallID(p.WallID); ok {
			row.Wall = wallName(wall)
		}
		if err := c.Check(p, fp); err != nil {
			row.Valid = false
			row.Reason = err.Error()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FloorIndex < rows[j].FloorIndex
	})
	return rows
}
