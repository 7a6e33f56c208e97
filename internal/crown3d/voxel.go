package crown3d

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang/geo/r3"
)

type voxelCoordinate struct {
	X int
	Y int
	Z int
}

// occupiedVoxelVolume counts distinct voxels of the given edge length
// containing at least one point, times the voxel volume.
func occupiedVoxelVolume(points []r3.Vector, voxelSize float64) float64 {
	if voxelSize <= 0 || len(points) == 0 {
		return 0
	}
	voxels := mapset.NewThreadUnsafeSet[voxelCoordinate]()
	for _, p := range points {
		voxels.Add(voxelCoordinate{
			X: int(math.Floor(p.X / voxelSize)),
			Y: int(math.Floor(p.Y / voxelSize)),
			Z: int(math.Floor(p.Z / voxelSize)),
		})
	}
	return float64(voxels.Cardinality()) * voxelSize * voxelSize * voxelSize
}

// porosity measures crown openness: the fraction of the hull volume not
// occupied by point bearing voxels. Clamped to [0,1] because a coarse voxel
// size can make the occupied volume overshoot the hull.
func porosity(points []r3.Vector, voxelSize, hullVolume float64) float64 {
	if hullVolume <= 0 {
		return math.NaN()
	}
	p := 1 - occupiedVoxelVolume(points, voxelSize)/hullVolume
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
