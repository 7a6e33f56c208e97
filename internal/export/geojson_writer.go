package export

import (
	"encoding/json"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/habitat-map/canopy_inventory/internal/converters"
	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/geometry"
)

// WriteTreeGeoJSON writes one point feature per tree. When a converter and
// SRID are given the coordinates are reprojected to WGS84; otherwise the
// raw tile coordinates are kept (non standard GeoJSON, but useful for local
// inspection of unreferenced clouds).
func WriteTreeGeoJSON(filePath string, trees []*data.TreeRecord, converter converters.CoordinateConverter, srid int) error {
	fc := geojson.NewFeatureCollection()
	for _, t := range trees {
		x, y := t.X, t.Y
		if converter != nil && srid != 0 {
			coord, err := converter.ConvertToWGS84(srid, geometry.Coordinate{X: t.X, Y: t.Y, Z: t.Height})
			if err != nil {
				return err
			}
			x, y = coord.X, coord.Y
		}
		f := geojson.NewFeature(orb.Point{x, y})
		f.Properties["tree_id"] = t.ID
		f.Properties["height_m"] = jsonMetric(t.Height)
		f.Properties["crown_diameter_m"] = jsonMetric(t.CrownDiameter)
		f.Properties["crown_shape"] = t.CrownShape
		f.Properties["dbh_cm"] = jsonMetric(t.DBHCm)
		f.Properties["dbh_fallback"] = t.DBHFallback
		f.Properties["carbon_t"] = jsonMetric(t.CarbonTonnes)
		f.Properties["n_points"] = t.NPoints
		if t.Metrics != nil && !math.IsNaN(t.Metrics.HullVolume) {
			f.Properties["hull_volume_m3"] = jsonMetric(t.Metrics.HullVolume)
			f.Properties["porosity"] = jsonMetric(t.Metrics.Porosity)
		}
		fc.Append(f)
	}

	payload, err := json.MarshalIndent(fc, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, payload, 0666)
}

// jsonMetric maps NaN to nil so the encoder emits null instead of failing.
func jsonMetric(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
