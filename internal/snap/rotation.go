package snap

import (
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

// RotationForWall returns the icon rotation, in degrees, that makes a
// wall-mounted device face out through its wall. Unrotated icon artwork faces
// south.
func RotationForWall(wall geometry.Wall) float64 {
	switch wall {
	case geometry.WallEast:
		return 270
	case geometry.WallNorth:
		return 180
	case geometry.WallWest:
		return 90
	}
	return 0
}

// PlacementRotation resolves the rotation to draw a placement with. An
// explicit rotation, zero included, always wins; otherwise the wall from the
// placement's wall reference decides; otherwise 0.
func PlacementRotation(p floorplan.DevicePlacement) float64 {
	if p.Rotation != nil {
		return *p.Rotation
	}
	if _, wall, ok := floorplan.ParseWallID(p.WallID); ok {
		return RotationForWall(wall)
	}
	return 0
}
