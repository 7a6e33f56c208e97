package pkg

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/attributes"
	"github.com/habitat-map/canopy_inventory/internal/data"
)

func TestRecordsFromTopsRasterOnly(t *testing.T) {
	tops := []*data.TreeTop{
		{ID: 1, Col: 2, Row: 3, X: 2.5, Y: 3.5, Height: 18.0},
		{ID: 2, Col: 7, Row: 1, X: 7.5, Y: 1.5, Height: 9.0},
	}

	records := recordsFromTops(tops, attributes.RegionBoreal)
	test.That(t, len(records), test.ShouldEqual, 2)

	rec := records[0]
	test.That(t, rec.ID, test.ShouldEqual, int32(1))
	test.That(t, rec.Height, test.ShouldEqual, 18.0)
	test.That(t, rec.XApex, test.ShouldEqual, 2.5)
	test.That(t, rec.DBHCm, test.ShouldAlmostEqual, 0.91*math.Pow(18, 1.13))
	test.That(t, rec.DBHFallback, test.ShouldBeFalse)

	// without points the crown footprint is unknown: no diameter, no
	// carbon, and no shape class
	test.That(t, rec.CrownShape, test.ShouldEqual, "")
	test.That(t, math.IsNaN(rec.CrownDiameter), test.ShouldBeTrue)
	test.That(t, math.IsNaN(rec.CarbonTonnes), test.ShouldBeTrue)
	test.That(t, math.IsNaN(rec.HeightMean), test.ShouldBeTrue)
}
