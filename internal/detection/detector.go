package detection

import (
	"fmt"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// Detector finds candidate tree apexes as local maxima of the CHM using a
// height dependent search window.
type Detector struct {
	window WindowFunc
	hmin   float64
}

func NewDetector(window WindowFunc, hmin float64) *Detector {
	return &Detector{window: window, hmin: hmin}
}

// Detect scans the CHM and returns tree tops ordered and numbered by
// row-major position. A cell qualifies when no cell within its window is
// strictly taller; among equal heights the lowest row-major index wins.
// Windows at the raster boundary are clipped. An empty apex list is a valid
// result, not an error.
func (d *Detector) Detect(chm *raster.Grid) ([]*data.TreeTop, error) {
	if chm == nil {
		return nil, fmt.Errorf("detection: nil CHM")
	}
	if err := chm.Validate(); err != nil {
		return nil, fmt.Errorf("detection: invalid CHM: %w", err)
	}

	var tops []*data.TreeTop
	for row := 0; row < chm.Rows; row++ {
		for col := 0; col < chm.Cols; col++ {
			h := chm.At(col, row)
			if h < d.hmin {
				continue
			}
			if d.isLocalMaximum(chm, col, row, h) {
				x, y := chm.CenterOf(col, row)
				tops = append(tops, &data.TreeTop{
					ID:     int32(len(tops) + 1),
					Col:    col,
					Row:    row,
					X:      x,
					Y:      y,
					Height: h,
				})
			}
		}
	}
	return tops, nil
}

func (d *Detector) isLocalMaximum(chm *raster.Grid, col, row int, h float64) bool {
	radius := d.window(h)
	rCells := int(radius / chm.CellSize)
	if rCells < 1 {
		rCells = 1
	}
	r2 := radius * radius
	center := row*chm.Cols + col

	for dr := -rCells; dr <= rCells; dr++ {
		for dc := -rCells; dc <= rCells; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			c, r := col+dc, row+dr
			if !chm.Contains(c, r) {
				continue
			}
			dx := float64(dc) * chm.CellSize
			dy := float64(dr) * chm.CellSize
			if dx*dx+dy*dy > r2 {
				continue
			}
			other := chm.At(c, r)
			if other > h {
				return false
			}
			// Explicit tie-break: equal heights yield to the lower row-major index.
			if other == h && r*chm.Cols+c < center {
				return false
			}
		}
	}
	return true
}
