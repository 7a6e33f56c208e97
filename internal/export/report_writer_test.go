package export

import (
	"math"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

func TestRunReportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := &data.RunReport{
		Tile:          "plot_a.las",
		TreesDetected: 12,
		TreesExcluded: 2,
		Warnings:      3,
		StageMillis:   map[string]int64{"chm": 41, "detect": 7},
		Stand: &data.StandSummary{
			TreeCount:      10,
			AreaHa:         1.5,
			TreesPerHa:     10 / 1.5,
			QuadMeanDiamCm: 23.4,
			SizeClassCounts: map[string]int{
				data.SizeClassSapling: 1,
				data.SizeClassPole:    4,
				data.SizeClassMature:  5,
				data.SizeClassVeteran: 0,
			},
		},
	}

	test.That(t, WriteRunReport(path, report), test.ShouldBeNil)
	got, err := ReadRunReport(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, report)
}

// An empty tile has no diameters; the summary must still serialize.
func TestStandSummaryWithoutDiameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stand.json")
	summary := &data.StandSummary{
		AreaHa:          0.25,
		QuadMeanDiamCm:  math.NaN(),
		SizeClassCounts: map[string]int{},
	}

	test.That(t, WriteStandSummary(path, summary), test.ShouldBeNil)
	got, err := ReadStandSummary(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(got.QuadMeanDiamCm), test.ShouldBeTrue)
	test.That(t, got.AreaHa, test.ShouldEqual, 0.25)
}
