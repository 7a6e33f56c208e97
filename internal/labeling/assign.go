package labeling

import (
	"errors"

	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// AssignPoints labels every point with the crown region its horizontal
// location falls in (nearest cell lookup, no interpolation). Points outside
// the raster extent keep TreeID 0 and are tallied as warnings; they are not
// an error because a CHM supplied by the caller may be slightly smaller than
// the cloud footprint.
func AssignPoints(points []*data.Point, labels *raster.LabelGrid) (outside int, err error) {
	if labels == nil {
		return 0, errors.New("labeling: nil label raster")
	}
	for _, p := range points {
		id, ok := labels.LabelAt(p.X, p.Y)
		if !ok {
			p.TreeID = 0
			outside++
			continue
		}
		p.TreeID = id
	}
	if outside > 0 {
		glog.Warningf("labeling: %d points fall outside the raster extent and stay unassigned", outside)
	}
	return outside, nil
}

// GroupByTree partitions labeled points per crown id, dropping unassigned
// points. The per tree slices are views over the cloud, not copies.
func GroupByTree(points []*data.Point) map[int32][]*data.Point {
	groups := make(map[int32][]*data.Point)
	for _, p := range points {
		if p.TreeID == 0 {
			continue
		}
		groups[p.TreeID] = append(groups[p.TreeID], p)
	}
	return groups
}
