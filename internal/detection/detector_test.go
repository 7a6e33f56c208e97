package detection

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/raster"
)

func flatGrid(cols, rows int, h float64) *raster.Grid {
	g := raster.NewGrid(cols, rows, 0, float64(rows), 1.0)
	for i := range g.Cells {
		g.Cells[i] = h
	}
	return g
}

// bumpGrid places gaussian canopy bumps of the given heights on a flat
// 0.5 m understory.
func bumpGrid(cols, rows int, centers [][2]int, heights []float64) *raster.Grid {
	g := raster.NewGrid(cols, rows, 0, float64(rows), 1.0)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			h := 0.5
			for i, c := range centers {
				d2 := float64((col-c[0])*(col-c[0]) + (row-c[1])*(row-c[1]))
				h = math.Max(h, heights[i]*math.Exp(-d2/18.0))
			}
			g.Set(col, row, h)
		}
	}
	return g
}

func TestDetectFlatGridTieBreak(t *testing.T) {
	// every cell is an equal maximum; the lowest row-major index wins
	g := flatGrid(12, 12, 10.0)

	tops, err := NewDetector(FixedWindow(2.0), 2.0).Detect(g)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(tops), test.ShouldEqual, 1)
	test.That(t, tops[0].Col, test.ShouldEqual, 0)
	test.That(t, tops[0].Row, test.ShouldEqual, 0)
	test.That(t, tops[0].ID, test.ShouldEqual, int32(1))
}

func TestDetectThreeBumps(t *testing.T) {
	centers := [][2]int{{10, 10}, {30, 10}, {20, 30}}
	g := bumpGrid(40, 40, centers, []float64{20, 18, 22})

	tops, err := NewDetector(FixedWindow(2.5), 2.0).Detect(g)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(tops), test.ShouldEqual, 3)

	found := map[[2]int]bool{}
	for _, top := range tops {
		found[[2]int{top.Col, top.Row}] = true
	}
	for _, c := range centers {
		test.That(t, found[c], test.ShouldBeTrue)
	}
}

func TestDetectMonotoneInHMin(t *testing.T) {
	g := bumpGrid(40, 40, [][2]int{{10, 10}, {30, 30}}, []float64{20, 6})

	low, err := NewDetector(FixedWindow(2.5), 2.0).Detect(g)
	test.That(t, err, test.ShouldBeNil)
	high, err := NewDetector(FixedWindow(2.5), 10.0).Detect(g)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, len(high), test.ShouldBeLessThanOrEqualTo, len(low))
	test.That(t, len(low), test.ShouldEqual, 2)
	test.That(t, len(high), test.ShouldEqual, 1)
	test.That(t, high[0].Height, test.ShouldAlmostEqual, 20.0)
}

func TestDetectEmptyResultIsNotAnError(t *testing.T) {
	g := flatGrid(10, 10, 0.5)

	tops, err := NewDetector(FixedWindow(2.0), 2.0).Detect(g)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(tops), test.ShouldEqual, 0)
}

func TestDetectDeterministic(t *testing.T) {
	g := bumpGrid(40, 40, [][2]int{{10, 10}, {30, 10}, {20, 30}}, []float64{20, 18, 22})
	detector := NewDetector(LinearWindow(1.2, 0.05, 1.0), 2.0)

	first, err := detector.Detect(g)
	test.That(t, err, test.ShouldBeNil)
	second, err := detector.Detect(g)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldResemble, first)
}

func TestDetectRejectsInvalidGrid(t *testing.T) {
	g := flatGrid(5, 5, 1.0)
	g.Set(2, 2, math.NaN())

	_, err := NewDetector(FixedWindow(2.0), 2.0).Detect(g)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParseWindowSpec(t *testing.T) {
	for _, spec := range []string{"3.5", "const:2", "linear:1.2,0.05"} {
		w, err := ParseWindowSpec(spec)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, w(10.0), test.ShouldBeGreaterThan, 0.0)
	}

	for _, spec := range []string{"", "cubic:1", "linear:1.2", "const:abc"} {
		_, err := ParseWindowSpec(spec)
		test.That(t, err, test.ShouldNotBeNil)
	}

	fixed, err := ParseWindowSpec("const:2.5")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fixed(3.0), test.ShouldEqual, 2.5)
	test.That(t, fixed(30.0), test.ShouldEqual, 2.5)

	linear, err := ParseWindowSpec("linear:1.0,0.1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, linear(10.0), test.ShouldAlmostEqual, 2.0)
}
