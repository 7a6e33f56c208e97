package stand

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

func tree(id int32, height, dbhCm, carbonT float64) *data.TreeRecord {
	return &data.TreeRecord{
		ID:           id,
		Height:       height,
		DBHCm:        dbhCm,
		CarbonTonnes: carbonT,
	}
}

func TestAggregateRejectsZeroArea(t *testing.T) {
	_, err := Aggregate(nil, 0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Aggregate(nil, -1, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAggregateBasics(t *testing.T) {
	trees := []*data.TreeRecord{
		tree(1, 4, 6, 0.02),   // sapling
		tree(2, 12, 14, 0.1),  // pole
		tree(3, 22, 28, 0.4),  // mature
		tree(4, 45, 90, 2.5),  // veteran, old growth on both criteria
	}

	summary, err := Aggregate(trees, 2.0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, summary.TreeCount, test.ShouldEqual, 4)
	test.That(t, summary.TreesPerHa, test.ShouldAlmostEqual, 2.0)
	test.That(t, summary.MaxHeight, test.ShouldEqual, 45.0)
	test.That(t, summary.MeanHeight, test.ShouldAlmostEqual, (4+12+22+45)/4.0)
	test.That(t, summary.OldGrowthCount, test.ShouldEqual, 1)
	test.That(t, summary.SizeClassCounts[data.SizeClassSapling], test.ShouldEqual, 1)
	test.That(t, summary.SizeClassCounts[data.SizeClassPole], test.ShouldEqual, 1)
	test.That(t, summary.SizeClassCounts[data.SizeClassMature], test.ShouldEqual, 1)
	test.That(t, summary.SizeClassCounts[data.SizeClassVeteran], test.ShouldEqual, 1)

	wantQMD := math.Sqrt((6*6 + 14*14 + 28*28 + 90*90) / 4.0)
	test.That(t, summary.QuadMeanDiamCm, test.ShouldAlmostEqual, wantQMD)

	wantBasal := (math.Pi*0.03*0.03 + math.Pi*0.07*0.07 + math.Pi*0.14*0.14 + math.Pi*0.45*0.45) / 2.0
	test.That(t, summary.BasalAreaM2Ha, test.ShouldAlmostEqual, wantBasal)

	test.That(t, summary.CarbonTonnesHa, test.ShouldAlmostEqual, (0.02+0.1+0.4+2.5)/2.0)
	// no tree carries hull metrics
	test.That(t, summary.TreesWithoutHull, test.ShouldEqual, 4)
}

func TestAggregateSkipsNaN(t *testing.T) {
	nan := math.NaN()
	trees := []*data.TreeRecord{
		tree(1, 20, 25, 0.5),
		tree(2, 18, nan, nan), // no DBH, no carbon
	}

	summary, err := Aggregate(trees, 1.0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.QuadMeanDiamCm, test.ShouldAlmostEqual, 25.0)
	test.That(t, summary.CarbonTonnesHa, test.ShouldAlmostEqual, 0.5)
	test.That(t, summary.BasalAreaM2Ha, test.ShouldAlmostEqual, math.Pi*0.125*0.125)
}

func TestOldGrowthTrees(t *testing.T) {
	trees := []*data.TreeRecord{
		tree(1, 41, 30, 0), // tall enough
		tree(2, 25, 85, 0), // thick enough
		tree(3, 25, 30, 0),
	}

	old := OldGrowthTrees(trees, DefaultOldGrowthThresholds())
	test.That(t, len(old), test.ShouldEqual, 2)
	test.That(t, old[0].ID, test.ShouldEqual, int32(1))
	test.That(t, old[1].ID, test.ShouldEqual, int32(2))
}

// Two merged tiles must report the same densities as one run over both.
func TestMergeRederivesRatios(t *testing.T) {
	tileA := []*data.TreeRecord{tree(1, 20, 25, 0.5), tree(2, 30, 40, 1.0)}
	tileB := []*data.TreeRecord{tree(1, 10, 12, 0.1)}

	summaryA, err := Aggregate(tileA, 1.0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldBeNil)
	summaryB, err := Aggregate(tileB, 3.0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldBeNil)

	merged, err := Merge([]*data.StandSummary{summaryA, summaryB})
	test.That(t, err, test.ShouldBeNil)

	both, err := Aggregate(append(append([]*data.TreeRecord{}, tileA...), tileB...), 4.0, DefaultOldGrowthThresholds())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, merged.TreeCount, test.ShouldEqual, both.TreeCount)
	test.That(t, merged.AreaHa, test.ShouldAlmostEqual, both.AreaHa)
	test.That(t, merged.TreesPerHa, test.ShouldAlmostEqual, both.TreesPerHa)
	test.That(t, merged.BasalAreaM2Ha, test.ShouldAlmostEqual, both.BasalAreaM2Ha)
	test.That(t, merged.CarbonTonnesHa, test.ShouldAlmostEqual, both.CarbonTonnesHa)
	test.That(t, merged.QuadMeanDiamCm, test.ShouldAlmostEqual, both.QuadMeanDiamCm)
	test.That(t, merged.MeanHeight, test.ShouldAlmostEqual, both.MeanHeight)
	test.That(t, merged.MaxHeight, test.ShouldEqual, both.MaxHeight)
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge(nil)
	test.That(t, err, test.ShouldNotBeNil)
}
