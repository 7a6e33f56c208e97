package attributes

import (
	"math"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

func crownPoints(cx, cy, radius, height float64, n int) []*data.Point {
	points := make([]*data.Point, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points = append(points, data.NewPoint(
			cx+radius*math.Cos(angle),
			cy+radius*math.Sin(angle),
			height*(0.5+0.5*float64(i)/float64(n)),
			0, 1, 5,
		))
	}
	// the apex itself
	points = append(points, data.NewPoint(cx, cy, height, 0, 1, 5))
	return points
}

func TestExtractBasicRecord(t *testing.T) {
	points := crownPoints(10, 20, 3, 18, 16)
	groups := map[int32][]*data.Point{1: points}
	tops := []*data.TreeTop{{ID: 1, Col: 5, Row: 5, X: 10, Y: 20, Height: 18}}

	extractor := NewExtractor(RegionBoreal, NewCarbonReference(), 1)
	records, excluded := extractor.Extract(groups, tops)
	test.That(t, excluded, test.ShouldEqual, 0)
	test.That(t, len(records), test.ShouldEqual, 1)

	rec := records[0]
	test.That(t, rec.ID, test.ShouldEqual, int32(1))
	test.That(t, rec.NPoints, test.ShouldEqual, len(points))
	test.That(t, rec.Height, test.ShouldEqual, 18.0)
	test.That(t, rec.X, test.ShouldAlmostEqual, 10.0, 1e-9)
	test.That(t, rec.Y, test.ShouldAlmostEqual, 20.0, 1e-9)
	test.That(t, rec.CrownDiameter, test.ShouldAlmostEqual, 6.0, 1e-9)
	test.That(t, rec.CrownDepth, test.ShouldBeGreaterThan, 0.0)
	test.That(t, rec.DBHFallback, test.ShouldBeFalse)
	test.That(t, rec.DBHCm, test.ShouldAlmostEqual, 0.91*math.Pow(18, 1.13), 1e-9)
	test.That(t, rec.CarbonTonnes, test.ShouldBeGreaterThan, 0.0)
}

func TestExtractDegenerateTwoPointTree(t *testing.T) {
	// two returns on the same vertical line: diameter 0, asymmetry undefined
	points := []*data.Point{
		data.NewPoint(5, 5, 2, 0, 1, 5),
		data.NewPoint(5, 5, 8, 0, 2, 5),
	}
	groups := map[int32][]*data.Point{3: points}

	extractor := NewExtractor(RegionGeneric, nil, 1)
	records, excluded := extractor.Extract(groups, nil)
	test.That(t, excluded, test.ShouldEqual, 0)
	test.That(t, len(records), test.ShouldEqual, 1)

	rec := records[0]
	test.That(t, rec.CrownDiameter, test.ShouldEqual, 0.0)
	test.That(t, rec.CrownShape, test.ShouldEqual, data.CrownShapeNarrow)
	test.That(t, math.IsNaN(rec.CrownAsymmetry), test.ShouldBeTrue)
	test.That(t, rec.Height, test.ShouldEqual, 8.0)
}

func TestExtractMinPointsExclusion(t *testing.T) {
	groups := map[int32][]*data.Point{
		1: crownPoints(0, 0, 2, 10, 8),
		2: {data.NewPoint(30, 30, 12, 0, 1, 5)},
	}

	extractor := NewExtractor(RegionInterior, nil, 5)
	records, excluded := extractor.Extract(groups, nil)
	test.That(t, excluded, test.ShouldEqual, 1)
	test.That(t, len(records), test.ShouldEqual, 1)
	test.That(t, records[0].ID, test.ShouldEqual, int32(1))
}

func TestExtractRecordsSortedByID(t *testing.T) {
	groups := map[int32][]*data.Point{
		7: crownPoints(0, 0, 2, 10, 8),
		2: crownPoints(30, 30, 2, 14, 8),
		5: crownPoints(60, 60, 2, 12, 8),
	}

	extractor := NewExtractor(RegionGeneric, nil, 1)
	records, _ := extractor.Extract(groups, nil)
	test.That(t, len(records), test.ShouldEqual, 3)
	test.That(t, records[0].ID, test.ShouldEqual, int32(2))
	test.That(t, records[1].ID, test.ShouldEqual, int32(5))
	test.That(t, records[2].ID, test.ShouldEqual, int32(7))
}

func TestParseRegionFallback(t *testing.T) {
	region, known := ParseRegion("boreal")
	test.That(t, known, test.ShouldBeTrue)
	test.That(t, region, test.ShouldEqual, RegionBoreal)

	region, known = ParseRegion("atlantis")
	test.That(t, known, test.ShouldBeFalse)
	test.That(t, region, test.ShouldEqual, RegionGeneric)

	coeff, fallback := CoefficientsFor(region)
	test.That(t, fallback, test.ShouldBeTrue)
	test.That(t, coeff.A, test.ShouldAlmostEqual, 1.06)

	_, fallback = CoefficientsFor(RegionCoastal)
	test.That(t, fallback, test.ShouldBeFalse)
}

func TestClassifyShape(t *testing.T) {
	test.That(t, classifyShape(20, 5), test.ShouldEqual, data.CrownShapeNarrow)  // ratio 4
	test.That(t, classifyShape(12, 8), test.ShouldEqual, data.CrownShapeMedium)  // ratio 1.5
	test.That(t, classifyShape(6, 8), test.ShouldEqual, data.CrownShapeBroad)    // ratio 0.75
	test.That(t, classifyShape(10, 0), test.ShouldEqual, data.CrownShapeNarrow)  // degenerate
}

func TestCarbonReferenceNearestNeighbor(t *testing.T) {
	ref := NewCarbonReference()

	// exact calibration rows come back unchanged
	test.That(t, ref.EstimateTonnes(2, 4), test.ShouldAlmostEqual, 0.03)
	test.That(t, ref.EstimateTonnes(8, 16), test.ShouldAlmostEqual, 0.75)

	// off-grid queries resolve to the nearest row
	test.That(t, ref.EstimateTonnes(2.2, 4.5), test.ShouldAlmostEqual, 0.03)
	test.That(t, ref.EstimateTonnes(7.5, 15.0), test.ShouldAlmostEqual, 0.75)
	test.That(t, ref.EstimateTonnes(50, 60), test.ShouldAlmostEqual, 0.75)
}

func TestLoadCarbonReferenceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon.csv")
	content := "diameter,height,carbon_t\n1,2,0.01\n10,20,1.5\n"
	test.That(t, writeTestFile(path, content), test.ShouldBeNil)

	ref, err := LoadCarbonReferenceCSV(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ref.EstimateTonnes(1, 2), test.ShouldAlmostEqual, 0.01)
	test.That(t, ref.EstimateTonnes(11, 19), test.ShouldAlmostEqual, 1.5)

	_, err = LoadCarbonReferenceCSV(filepath.Join(t.TempDir(), "missing.csv"))
	test.That(t, err, test.ShouldNotBeNil)
}
