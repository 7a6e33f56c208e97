package chm

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/geometry"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// Builder rasterizes a height normalized point cloud into a canopy height
// model: each cell holds the maximum point height within its footprint.
type Builder struct {
	cellSize float64
	smooth   bool
}

func NewBuilder(cellSize float64, smooth bool) *Builder {
	return &Builder{cellSize: cellSize, smooth: smooth}
}

// Build computes the CHM grid for the given points. Negative normalized
// heights (ground returns below the interpolated surface) clamp to zero so
// the model never reports negative vegetation height.
func (b *Builder) Build(points []*data.Point) (*raster.Grid, error) {
	if len(points) == 0 {
		return nil, errors.New("chm: empty point cloud")
	}
	if b.cellSize <= 0 {
		return nil, errors.New("chm: non positive cell size")
	}

	box := boundsOf(points)
	cols := int(math.Ceil((box.Xmax-box.Xmin)/b.cellSize)) + 1
	rows := int(math.Ceil((box.Ymax-box.Ymin)/b.cellSize)) + 1
	grid := raster.NewGrid(cols, rows, box.Xmin, box.Ymin+float64(rows)*b.cellSize, b.cellSize)

	if err := b.binPoints(grid, points); err != nil {
		return nil, err
	}
	for i, v := range grid.Cells {
		if v == grid.NoData {
			grid.Cells[i] = 0
		} else if v < 0 {
			grid.Cells[i] = 0
		}
	}
	if b.smooth {
		smoothMean3x3(grid)
	}
	return grid, grid.Validate()
}

// binPoints fills per cell maxima using one worker per row band. Workers own
// disjoint row ranges of the cell buffer, so no locking is needed.
func (b *Builder) binPoints(grid *raster.Grid, points []*data.Point) error {
	var badPoint error
	var once sync.Once

	workers := runtime.NumCPU()
	if workers > grid.Rows {
		workers = grid.Rows
	}
	band := (grid.Rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		rowLo := w * band
		rowHi := rowLo + band
		if rowHi > grid.Rows {
			rowHi = grid.Rows
		}
		wg.Add(1)
		go func(rowLo, rowHi int) {
			defer wg.Done()
			for _, p := range points {
				if math.IsNaN(p.Z) || math.IsInf(p.Z, 0) {
					once.Do(func() { badPoint = errors.New("chm: non finite point height") })
					return
				}
				col, row := grid.CellOf(p.X, p.Y)
				if col < 0 {
					col = 0
				} else if col >= grid.Cols {
					col = grid.Cols - 1
				}
				if row < 0 {
					row = 0
				} else if row >= grid.Rows {
					row = grid.Rows - 1
				}
				if row < rowLo || row >= rowHi {
					continue
				}
				if cur := grid.At(col, row); cur == grid.NoData || p.Z > cur {
					grid.Set(col, row, p.Z)
				}
			}
		}(rowLo, rowHi)
	}
	wg.Wait()
	return badPoint
}

// smoothMean3x3 applies a 3x3 mean filter. A smoothed cell never exceeds the
// raw per cell maximum, keeping the CHM consistent with the point maxima.
func smoothMean3x3(grid *raster.Grid) {
	out := make([]float64, len(grid.Cells))
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			var sum float64
			var n int
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					c, r := col+dc, row+dr
					if grid.Contains(c, r) {
						sum += grid.At(c, r)
						n++
					}
				}
			}
			mean := sum / float64(n)
			if raw := grid.At(col, row); mean > raw {
				mean = raw
			}
			out[grid.Index(col, row)] = mean
		}
	}
	copy(grid.Cells, out)
}

func boundsOf(points []*data.Point) *geometry.BoundingBox {
	box := geometry.NewBoundingBox(points[0].X, points[0].X, points[0].Y, points[0].Y, points[0].Z, points[0].Z)
	for _, p := range points[1:] {
		box.Extend(p.X, p.Y, p.Z)
	}
	return box
}
