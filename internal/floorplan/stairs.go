package floorplan

// EnsureFloorplanStairs backfills a missing stairs list for snapshots stored
// before stairs existed.
func EnsureFloorplanStairs(fp FloorplanWithStairs) FloorplanWithStairs {
	if fp.Stairs == nil {
		fp.Stairs = []Stair{}
	}
	return fp
}

// AddStairs upserts a stair marker by id.
func AddStairs(fp FloorplanWithStairs, s Stair) FloorplanWithStairs {
	stairs := make([]Stair, 0, len(fp.Stairs)+1)
	replaced := false
	for _, existing := range fp.Stairs {
		if existing.ID == s.ID {
			stairs = append(stairs, s)
			replaced = true
			continue
		}
		stairs = append(stairs, existing)
	}
	if !replaced {
		stairs = append(stairs, s)
	}

	fp.Stairs = stairs
	return fp
}

func RemoveStairsByID(fp FloorplanWithStairs, id string) FloorplanWithStairs {
	stairs := make([]Stair, 0, len(fp.Stairs))
	for _, s := range fp.Stairs {
		if s.ID != id {
			stairs = append(stairs, s)
		}
	}

	fp.Stairs = stairs
	return fp
}
