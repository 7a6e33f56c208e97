package crown3d

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// verticalProfile partitions the tree height range into layers of equal
// thickness and reports per layer crown widths about that layer's own
// centroid, capturing the taper of the crown. Empty layers report NaN.
func verticalProfile(points []r3.Vector, layers int) []data.LayerWidth {
	if layers <= 0 || len(points) == 0 {
		return nil
	}
	minZ, maxZ := points[0].Z, points[0].Z
	for _, p := range points[1:] {
		minZ = math.Min(minZ, p.Z)
		maxZ = math.Max(maxZ, p.Z)
	}
	span := maxZ - minZ
	if span <= 0 {
		span = 1e-9
	}
	thickness := span / float64(layers)

	buckets := make([][]r3.Vector, layers)
	for _, p := range points {
		i := int((p.Z - minZ) / thickness)
		if i >= layers {
			i = layers - 1
		}
		buckets[i] = append(buckets[i], p)
	}

	profile := make([]data.LayerWidth, layers)
	for i, bucket := range buckets {
		layer := data.LayerWidth{
			ZLow:      minZ + float64(i)*thickness,
			ZHigh:     minZ + float64(i+1)*thickness,
			MeanWidth: math.NaN(),
			MaxWidth:  math.NaN(),
		}
		if len(bucket) > 0 {
			var cx, cy float64
			for _, p := range bucket {
				cx += p.X
				cy += p.Y
			}
			cx /= float64(len(bucket))
			cy /= float64(len(bucket))

			var sum, max float64
			for _, p := range bucket {
				d := math.Hypot(p.X-cx, p.Y-cy)
				sum += d
				if d > max {
					max = d
				}
			}
			// width is the diameter about the layer centroid
			layer.MeanWidth = 2 * sum / float64(len(bucket))
			layer.MaxWidth = 2 * max
		}
		profile[i] = layer
	}
	return profile
}
