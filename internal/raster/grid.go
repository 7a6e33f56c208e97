package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// DefaultNoData is the sentinel written for cells with no points.
const DefaultNoData = -9999.0

// Grid is a regular 2D raster of float64 cells with a square cell size.
// The origin (Xmin, Ymax) is the outer corner of the top left cell, matching
// the ESRI ASCII grid convention. Rows run north to south.
type Grid struct {
	Cols     int
	Rows     int
	Xmin     float64
	Ymax     float64
	CellSize float64
	NoData   float64
	Cells    []float64
}

func NewGrid(cols, rows int, xmin, ymax, cellSize float64) *Grid {
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		Xmin:     xmin,
		Ymax:     ymax,
		CellSize: cellSize,
		NoData:   DefaultNoData,
		Cells:    make([]float64, cols*rows),
	}
	for i := range g.Cells {
		g.Cells[i] = g.NoData
	}
	return g
}

func (g *Grid) Index(col, row int) int {
	return row*g.Cols + col
}

func (g *Grid) At(col, row int) float64 {
	return g.Cells[row*g.Cols+col]
}

func (g *Grid) Set(col, row int, v float64) {
	g.Cells[row*g.Cols+col] = v
}

// IsNoData reports whether the cell holds the no-data sentinel.
func (g *Grid) IsNoData(col, row int) bool {
	return g.At(col, row) == g.NoData
}

// Contains reports whether (col, row) addresses a cell of the grid.
func (g *Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// CellOf maps a map coordinate to the cell containing it.
// The returned indices may fall outside the grid, callers check Contains.
func (g *Grid) CellOf(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.Xmin) / g.CellSize))
	row = int(math.Floor((g.Ymax - y) / g.CellSize))
	return col, row
}

// CenterOf returns the map coordinate of the cell center.
func (g *Grid) CenterOf(col, row int) (x, y float64) {
	x = g.Xmin + (float64(col)+0.5)*g.CellSize
	y = g.Ymax - (float64(row)+0.5)*g.CellSize
	return x, y
}

func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.Xmin, Y: g.Ymax - float64(g.Rows)*g.CellSize},
		Max: geom.Point{X: g.Xmin + float64(g.Cols)*g.CellSize, Y: g.Ymax},
	}
}

// Validate fails fast on grids the downstream stages cannot process:
// zero extent, non positive cell size or non finite cell values.
func (g *Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("raster: zero extent (%dx%d)", g.Cols, g.Rows)
	}
	if g.CellSize <= 0 {
		return fmt.Errorf("raster: non positive cell size %f", g.CellSize)
	}
	if len(g.Cells) != g.Cols*g.Rows {
		return fmt.Errorf("raster: cell buffer length %d does not match %dx%d", len(g.Cells), g.Cols, g.Rows)
	}
	for i, v := range g.Cells {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("raster: non finite value at cell %d", i)
		}
	}
	return nil
}

// LabelGrid is a raster of int32 crown labels sharing the Grid georeferencing.
// Label 0 marks unassigned cells.
type LabelGrid struct {
	Cols     int
	Rows     int
	Xmin     float64
	Ymax     float64
	CellSize float64
	Labels   []int32
}

func NewLabelGrid(ref *Grid) *LabelGrid {
	return &LabelGrid{
		Cols:     ref.Cols,
		Rows:     ref.Rows,
		Xmin:     ref.Xmin,
		Ymax:     ref.Ymax,
		CellSize: ref.CellSize,
		Labels:   make([]int32, ref.Cols*ref.Rows),
	}
}

func (l *LabelGrid) At(col, row int) int32 {
	return l.Labels[row*l.Cols+col]
}

func (l *LabelGrid) Set(col, row int, v int32) {
	l.Labels[row*l.Cols+col] = v
}

func (l *LabelGrid) Contains(col, row int) bool {
	return col >= 0 && col < l.Cols && row >= 0 && row < l.Rows
}

func (l *LabelGrid) CellOf(x, y float64) (col, row int) {
	col = int(math.Floor((x - l.Xmin) / l.CellSize))
	row = int(math.Floor((l.Ymax - y) / l.CellSize))
	return col, row
}

// LabelAt looks up the crown label at a map coordinate, 0 when outside.
func (l *LabelGrid) LabelAt(x, y float64) (int32, bool) {
	col, row := l.CellOf(x, y)
	if !l.Contains(col, row) {
		return 0, false
	}
	return l.At(col, row), true
}
