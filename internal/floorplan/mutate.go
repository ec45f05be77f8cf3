package floorplan

// Mutations never modify their input. Each returns a new snapshot; slices that
// change are copied, unchanged floors and rooms are shared and must be treated
// as read-only by callers.

// PlaceDevice upserts a placement by id. An existing placement is replaced in
// place, keeping its position in the slice; otherwise the placement is
// appended. Validity is not checked here.
func PlaceDevice(fp Floorplan, p DevicePlacement) Floorplan {
	placements := make([]DevicePlacement, 0, len(fp.Placements)+1)
	replaced := false
	for _, existing := range fp.Placements {
		if existing.ID == p.ID {
			placements = append(placements, p)
			replaced = true
			continue
		}
		placements = append(placements, existing)
	}
	if !replaced {
		placements = append(placements, p)
	}

	fp.Placements = placements
	return fp
}

// RemovePlacementByID drops the placement with id. Removing an unknown id
// returns an equivalent snapshot.
func RemovePlacementByID(fp Floorplan, id string) Floorplan {
	fp.Placements = filterPlacements(fp.Placements, func(p DevicePlacement) bool {
		return p.ID != id
	})
	return fp
}

// RemoveRoomByID removes a room from a floor and every placement that
// references it, in one snapshot. When the floor does not hold the room the
// snapshot is returned unchanged.
func RemoveRoomByID(fp Floorplan, floorID, roomID string) Floorplan {
	floors := make([]Floor, len(fp.Floors))
	copy(floors, fp.Floors)

	removed := false
	for i, f := range floors {
		if f.ID != floorID {
			continue
		}
		rooms := make([]Room, 0, len(f.Rooms))
		for _, r := range f.Rooms {
			if r.ID == roomID {
				removed = true
				continue
			}
			rooms = append(rooms, r)
		}
		f.Rooms = rooms
		floors[i] = f
	}
	if !removed {
		return fp
	}

	fp.Floors = floors
	fp.Placements = filterPlacements(fp.Placements, func(p DevicePlacement) bool {
		return p.RoomID != roomID
	})
	return fp
}

func filterPlacements(in []DevicePlacement, keep func(DevicePlacement) bool) []DevicePlacement {
	out := make([]DevicePlacement, 0, len(in))
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
