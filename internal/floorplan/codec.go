package floorplan

import (
	"encoding/json"
	"fmt"

	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

// Decode parses a stored floorplan, backfilling stairs for older snapshots.
// Room sizes and door and window offsets are brought back into range the same
// way the constructors do.
func Decode(data []byte) (FloorplanWithStairs, error) {
	var fp FloorplanWithStairs
	if err := json.Unmarshal(data, &fp); err != nil {
		return FloorplanWithStairs{}, fmt.Errorf("decode floorplan: %w", err)
	}
	if fp.Version == "" {
		fp.Version = CurrentVersion
	}
	normalizeRooms(fp.Floors)
	return EnsureFloorplanStairs(fp), nil
}

// normalizeRooms fixes freshly decoded rooms in place.
func normalizeRooms(floors []Floor) {
	for i := range floors {
		for j := range floors[i].Rooms {
			r := &floors[i].Rooms[j]
			r.Rect = r.Rect.Normalize()
			for k := range r.Doors {
				r.Doors[k].Offset = geometry.Clamp01(r.Doors[k].Offset)
			}
			for k := range r.Windows {
				r.Windows[k].Offset = geometry.Clamp01(r.Windows[k].Offset)
			}
		}
	}
}

func Encode(fp FloorplanWithStairs) ([]byte, error) {
	data, err := json.Marshal(fp)
	if err != nil {
		return nil, fmt.Errorf("encode floorplan: %w", err)
	}
	return data, nil
}
