package converters

import (
	"github.com/habitat-map/canopy_inventory/internal/geometry"
)

type CoordinateConverter interface {
	ConvertToWGS84(sourceSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	Cleanup()
}

type ElevationCorrector interface {
	CorrectElevation(x, y, z float64) float64
}
