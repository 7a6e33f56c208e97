package export

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// metric columns round to millimeter scale so repeated runs diff cleanly
const metricPlaces = 3

var treeTableHeader = []string{
	"tree_id", "x", "y", "x_apex", "y_apex",
	"height", "height_mean", "crown_base_height", "crown_depth", "n_points",
	"crown_diameter_x", "crown_diameter_y", "crown_diameter", "crown_shape",
	"apex_offset", "crown_asymmetry", "dbh_cm", "dbh_fallback", "carbon_t",
	"hull_volume", "hull_surface_area", "alpha_volume", "alpha",
	"porosity", "solidity", "asymmetry_index", "lean_direction",
}

// WriteTreeTableCSV writes one row per tree record. Missing numeric
// attributes serialize as NA, never as zero.
func WriteTreeTableCSV(filePath string, trees []*data.TreeRecord) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(treeTableHeader); err != nil {
		return err
	}
	for _, t := range trees {
		metrics := t.Metrics
		if metrics == nil {
			metrics = data.NewCrownMetricsNaN()
		}
		row := []string{
			strconv.Itoa(int(t.ID)),
			fmtMetric(t.X), fmtMetric(t.Y), fmtMetric(t.XApex), fmtMetric(t.YApex),
			fmtMetric(t.Height), fmtMetric(t.HeightMean), fmtMetric(t.CrownBaseHeight), fmtMetric(t.CrownDepth),
			strconv.Itoa(t.NPoints),
			fmtMetric(t.CrownDiameterX), fmtMetric(t.CrownDiameterY), fmtMetric(t.CrownDiameter), t.CrownShape,
			fmtMetric(t.ApexOffset), fmtMetric(t.CrownAsymmetry), fmtMetric(t.DBHCm),
			strconv.FormatBool(t.DBHFallback), fmtMetric(t.CarbonTonnes),
			fmtMetric(metrics.HullVolume), fmtMetric(metrics.HullSurfaceArea),
			fmtMetric(metrics.AlphaVolume), fmtMetric(metrics.Alpha),
			fmtMetric(metrics.Porosity), fmtMetric(metrics.Solidity),
			fmtMetric(metrics.AsymmetryIndex), fmtMetric(metrics.LeanDirection),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteProfilesCSV writes the vertical width profile rows of all trees that
// have one.
func WriteProfilesCSV(filePath string, trees []*data.TreeRecord) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"tree_id", "layer", "z_low", "z_high", "mean_width", "max_width"}); err != nil {
		return err
	}
	for _, t := range trees {
		if t.Metrics == nil {
			continue
		}
		for i, layer := range t.Metrics.Profile {
			row := []string{
				strconv.Itoa(int(t.ID)),
				strconv.Itoa(i + 1),
				fmtMetric(layer.ZLow), fmtMetric(layer.ZHigh),
				fmtMetric(layer.MeanWidth), fmtMetric(layer.MaxWidth),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// fmtMetric renders a metric value with stable decimal rounding; NaN and
// infinities become NA.
func fmtMetric(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return decimal.NewFromFloat(v).Round(metricPlaces).String()
}
