package raster

import (
	"math"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestGridCellMapping(t *testing.T) {
	g := NewGrid(10, 8, 100.0, 250.0, 0.5)

	col, row := g.CellOf(100.0, 250.0)
	test.That(t, col, test.ShouldEqual, 0)
	test.That(t, row, test.ShouldEqual, 0)

	// cell centers map back to their own cell
	for _, c := range [][2]int{{0, 0}, {9, 7}, {4, 3}} {
		x, y := g.CenterOf(c[0], c[1])
		col, row = g.CellOf(x, y)
		test.That(t, col, test.ShouldEqual, c[0])
		test.That(t, row, test.ShouldEqual, c[1])
	}

	col, row = g.CellOf(99.0, 250.0)
	test.That(t, g.Contains(col, row), test.ShouldBeFalse)
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(10, 8, 100.0, 250.0, 0.5)
	b := g.Bounds()
	test.That(t, b.Min.X, test.ShouldEqual, 100.0)
	test.That(t, b.Max.X, test.ShouldEqual, 105.0)
	test.That(t, b.Min.Y, test.ShouldEqual, 246.0)
	test.That(t, b.Max.Y, test.ShouldEqual, 250.0)
}

func TestGridValidate(t *testing.T) {
	g := NewGrid(4, 4, 0, 4, 1)
	for i := range g.Cells {
		g.Cells[i] = float64(i)
	}
	test.That(t, g.Validate(), test.ShouldBeNil)

	g.Set(1, 1, math.NaN())
	test.That(t, g.Validate(), test.ShouldNotBeNil)
	g.Set(1, 1, math.Inf(1))
	test.That(t, g.Validate(), test.ShouldNotBeNil)

	empty := &Grid{Cols: 0, Rows: 0, CellSize: 1}
	test.That(t, empty.Validate(), test.ShouldNotBeNil)

	badCell := NewGrid(2, 2, 0, 2, -1)
	test.That(t, badCell.Validate(), test.ShouldNotBeNil)
}

func TestEsriAsciiRoundTrip(t *testing.T) {
	g := NewGrid(3, 2, 10.0, 22.0, 1.0)
	for i := range g.Cells {
		g.Cells[i] = float64(i) * 1.5
	}

	path := filepath.Join(t.TempDir(), "chm.asc")
	test.That(t, WriteEsriAscii(path, g), test.ShouldBeNil)

	got, err := ReadEsriAscii(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Cols, test.ShouldEqual, g.Cols)
	test.That(t, got.Rows, test.ShouldEqual, g.Rows)
	test.That(t, got.Xmin, test.ShouldAlmostEqual, g.Xmin)
	test.That(t, got.Ymax, test.ShouldAlmostEqual, g.Ymax)
	test.That(t, got.CellSize, test.ShouldAlmostEqual, g.CellSize)
	test.That(t, got.Cells, test.ShouldResemble, g.Cells)
}

func TestEsriAsciiCenterOrigin(t *testing.T) {
	// xllcenter/yllcenter headers shift the origin by half a cell
	path := filepath.Join(t.TempDir(), "center.asc")
	content := "ncols 2\nnrows 2\nxllcenter 0.5\nyllcenter 0.5\ncellsize 1.0\nNODATA_value -9999\n1 2\n3 4\n"
	test.That(t, writeTestFile(path, content), test.ShouldBeNil)

	got, err := ReadEsriAscii(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Xmin, test.ShouldAlmostEqual, 0.0)
	test.That(t, got.Ymax, test.ShouldAlmostEqual, 2.0)
}

func TestLabelsEsriAsciiRoundTrip(t *testing.T) {
	ref := NewGrid(3, 3, 0, 3, 1)
	l := NewLabelGrid(ref)
	l.Set(0, 0, 1)
	l.Set(2, 2, 7)

	path := filepath.Join(t.TempDir(), "crowns.asc")
	test.That(t, WriteLabelsEsriAscii(path, l), test.ShouldBeNil)

	got, err := ReadLabelsEsriAscii(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Labels, test.ShouldResemble, l.Labels)

	label, inside := got.LabelAt(2.5, 0.5)
	test.That(t, inside, test.ShouldBeTrue)
	test.That(t, label, test.ShouldEqual, int32(7))

	_, inside = got.LabelAt(-1, -1)
	test.That(t, inside, test.ShouldBeFalse)
}

func TestEsriAsciiRejectsTruncatedGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.asc")
	content := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"
	test.That(t, writeTestFile(path, content), test.ShouldBeNil)

	_, err := ReadEsriAscii(path)
	test.That(t, err, test.ShouldNotBeNil)
}
