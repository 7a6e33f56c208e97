package chm

import (
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

func TestBuildPerCellMax(t *testing.T) {
	points := []*data.Point{
		data.NewPoint(0.2, 9.8, 3.0, 0, 1, 5),
		data.NewPoint(0.4, 9.6, 7.5, 0, 1, 5),
		data.NewPoint(9.7, 0.3, 12.0, 0, 1, 5),
	}

	grid, err := NewBuilder(1.0, false).Build(points)
	test.That(t, err, test.ShouldBeNil)

	col, row := grid.CellOf(0.3, 9.7)
	test.That(t, grid.At(col, row), test.ShouldEqual, 7.5)

	// the south-east point sits on the clamped last row
	found := false
	for _, v := range grid.Cells {
		if v == 12.0 {
			found = true
		}
	}
	test.That(t, found, test.ShouldBeTrue)
}

func TestBuildClampsNegativeHeights(t *testing.T) {
	points := []*data.Point{
		data.NewPoint(0.5, 0.5, -0.8, 0, 1, 2),
		data.NewPoint(1.5, 0.5, 4.0, 0, 1, 5),
	}

	grid, err := NewBuilder(1.0, false).Build(points)
	test.That(t, err, test.ShouldBeNil)

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			test.That(t, grid.At(col, row), test.ShouldBeGreaterThanOrEqualTo, 0.0)
		}
	}
}

func TestBuildIncludesEdgePoints(t *testing.T) {
	// points on the exact south and east edges still land in a cell
	points := []*data.Point{
		data.NewPoint(0.0, 0.0, 5.0, 0, 1, 5),
		data.NewPoint(4.0, 4.0, 6.0, 0, 1, 5),
		data.NewPoint(4.0, 0.0, 7.0, 0, 1, 5),
	}

	grid, err := NewBuilder(1.0, false).Build(points)
	test.That(t, err, test.ShouldBeNil)

	nonZero := 0
	for _, v := range grid.Cells {
		if v > 0 {
			nonZero++
		}
	}
	test.That(t, nonZero, test.ShouldEqual, 3)
}

func TestSmoothingNeverExceedsRawMax(t *testing.T) {
	points := make([]*data.Point, 0)
	for x := 0.5; x < 10; x++ {
		for y := 0.5; y < 10; y++ {
			points = append(points, data.NewPoint(x, y, 5.0, 0, 1, 5))
		}
	}
	// one spike
	points = append(points, data.NewPoint(5.5, 5.5, 30.0, 0, 1, 5))

	raw, err := NewBuilder(1.0, false).Build(points)
	test.That(t, err, test.ShouldBeNil)
	smoothed, err := NewBuilder(1.0, true).Build(points)
	test.That(t, err, test.ShouldBeNil)

	rawMax, smoothMax := 0.0, 0.0
	for i := range raw.Cells {
		if raw.Cells[i] > rawMax {
			rawMax = raw.Cells[i]
		}
		if smoothed.Cells[i] > smoothMax {
			smoothMax = smoothed.Cells[i]
		}
	}
	test.That(t, rawMax, test.ShouldEqual, 30.0)
	test.That(t, smoothMax, test.ShouldBeLessThanOrEqualTo, rawMax)

	// the spike cell itself must have been pulled down by its neighbors
	col, row := smoothed.CellOf(5.5, 5.5)
	test.That(t, smoothed.At(col, row), test.ShouldBeLessThan, 30.0)
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	_, err := NewBuilder(1.0, false).Build(nil)
	test.That(t, err, test.ShouldNotBeNil)
}
