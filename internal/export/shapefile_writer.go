package export

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// DBF has no NA representation; missing metrics use the GIS convention.
const shpNoData = -9999.0

// treeShape is the shapefile archetype; field names stay within the 10
// character DBF limit.
type treeShape struct {
	geom.Point
	TreeID    int
	Height    float64
	CrownDiam float64
	Shape     string
	DBHCm     float64
	CarbonT   float64
	HullVol   float64
	NPoints   int
}

// WriteTreeShapefile writes the tree locations as a point shapefile in the
// tile's native coordinate system.
func WriteTreeShapefile(filePath string, trees []*data.TreeRecord) error {
	encoder, err := shp.NewEncoder(filePath, treeShape{})
	if err != nil {
		return err
	}
	defer encoder.Close()

	for _, t := range trees {
		row := treeShape{
			Point:     geom.Point{X: t.X, Y: t.Y},
			TreeID:    int(t.ID),
			Height:    shpMetric(t.Height),
			CrownDiam: shpMetric(t.CrownDiameter),
			Shape:     t.CrownShape,
			DBHCm:     shpMetric(t.DBHCm),
			CarbonT:   shpMetric(t.CarbonTonnes),
			HullVol:   shpMetric(t.HullVolumeOrNaN()),
			NPoints:   t.NPoints,
		}
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func shpMetric(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return shpNoData
	}
	return v
}
