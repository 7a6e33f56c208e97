package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

func sampleRecords() []*data.TreeRecord {
	nan := math.NaN()
	withMetrics := &data.TreeRecord{
		ID: 1, X: 10.123456, Y: 20.654321, XApex: 10.1, YApex: 20.7,
		Height: 18.5, HeightMean: 12.2, CrownBaseHeight: 6.1, CrownDepth: 12.4,
		NPoints: 240, CrownDiameterX: 5.0, CrownDiameterY: 6.0, CrownDiameter: 5.5,
		CrownShape: data.CrownShapeMedium, ApexOffset: 0.4, CrownAsymmetry: 0.2,
		DBHCm: 24.8, CarbonTonnes: 0.41,
		Metrics: &data.CrownMetrics{
			HullVolume: 120.5, HullSurfaceArea: 140.2, AlphaVolume: 98.7,
			Alpha: 1.8, Porosity: 0.35, Solidity: 0.82,
			AsymmetryIndex: 0.12, LeanDirection: 135.0,
			Profile: []data.LayerWidth{
				{ZLow: 0, ZHigh: 9.25, MeanWidth: 4.2, MaxWidth: 5.8},
				{ZLow: 9.25, ZHigh: 18.5, MeanWidth: 3.1, MaxWidth: 4.4},
			},
		},
	}
	degenerate := &data.TreeRecord{
		ID: 2, X: 1, Y: 1, XApex: 1, YApex: 1, Height: 3.2,
		HeightMean: 3.0, CrownBaseHeight: nan, CrownDepth: nan, NPoints: 2,
		CrownDiameterX: 0, CrownDiameterY: 0, CrownDiameter: 0,
		CrownShape: data.CrownShapeNarrow, ApexOffset: 0, CrownAsymmetry: nan,
		DBHCm: 3.5, DBHFallback: true, CarbonTonnes: nan,
	}
	return []*data.TreeRecord{withMetrics, degenerate}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	return rows
}

func TestWriteTreeTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees.csv")
	test.That(t, WriteTreeTableCSV(path, sampleRecords()), test.ShouldBeNil)

	rows := readCSV(t, path)
	test.That(t, len(rows), test.ShouldEqual, 3)
	test.That(t, rows[0], test.ShouldResemble, treeTableHeader)
	for _, row := range rows[1:] {
		test.That(t, len(row), test.ShouldEqual, len(treeTableHeader))
	}

	test.That(t, rows[1][0], test.ShouldEqual, "1")
	test.That(t, rows[1][1], test.ShouldEqual, "10.123")
	test.That(t, rows[2][17], test.ShouldEqual, "true") // dbh_fallback

	// NaN attributes serialize as NA, never as zero
	test.That(t, rows[2][7], test.ShouldEqual, "NA")  // crown_base_height
	test.That(t, rows[2][19], test.ShouldEqual, "NA") // hull_volume (no metrics)
}

func TestWriteProfilesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.csv")
	test.That(t, WriteProfilesCSV(path, sampleRecords()), test.ShouldBeNil)

	rows := readCSV(t, path)
	// header plus the two layers of tree 1; tree 2 has no profile
	test.That(t, len(rows), test.ShouldEqual, 3)
	test.That(t, rows[1][0], test.ShouldEqual, "1")
	test.That(t, rows[1][1], test.ShouldEqual, "1")
	test.That(t, rows[2][1], test.ShouldEqual, "2")
}

func TestFmtMetric(t *testing.T) {
	test.That(t, fmtMetric(1.23456), test.ShouldEqual, "1.235")
	test.That(t, fmtMetric(0), test.ShouldEqual, "0")
	test.That(t, fmtMetric(math.NaN()), test.ShouldEqual, "NA")
	test.That(t, fmtMetric(math.Inf(1)), test.ShouldEqual, "NA")
}
