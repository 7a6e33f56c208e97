package attributes

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// CarbonReference estimates per tree carbon by nearest neighbor lookup in
// (crown diameter, height) space over a calibration table. Project specific
// tables replace the seeded defaults via LoadCarbonReferenceCSV.
type CarbonReference struct {
	index *rtree.Rtree
	rows  []*carbonRow
}

type carbonRow struct {
	CrownDiameterM float64
	HeightM        float64
	CarbonTonnes   float64
}

func (r *carbonRow) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.CrownDiameterM, Y: r.HeightM},
		Max: geom.Point{X: r.CrownDiameterM, Y: r.HeightM},
	}
}

// NewCarbonReference seeds the default calibration rows.
func NewCarbonReference() *CarbonReference {
	ref := &CarbonReference{index: rtree.NewTree(25, 50)}
	for _, row := range []carbonRow{
		{CrownDiameterM: 2.0, HeightM: 4.0, CarbonTonnes: 0.03},
		{CrownDiameterM: 4.0, HeightM: 8.0, CarbonTonnes: 0.12},
		{CrownDiameterM: 6.0, HeightM: 12.0, CarbonTonnes: 0.35},
		{CrownDiameterM: 8.0, HeightM: 16.0, CarbonTonnes: 0.75},
	} {
		ref.add(row)
	}
	return ref
}

// LoadCarbonReferenceCSV builds a reference from a CSV of
// crown_diameter_m,height_m,carbon_tonnes rows (header optional).
func LoadCarbonReferenceCSV(filePath string) (*CarbonReference, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ref := &CarbonReference{index: rtree.NewTree(25, 50)}
	reader := csv.NewReader(file)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("attributes: carbon reference row needs 3 columns, got %d", len(record))
		}
		d, errD := strconv.ParseFloat(record[0], 64)
		h, errH := strconv.ParseFloat(record[1], 64)
		c, errC := strconv.ParseFloat(record[2], 64)
		if errD != nil || errH != nil || errC != nil {
			// tolerate a single header line
			if len(ref.rows) == 0 {
				continue
			}
			return nil, fmt.Errorf("attributes: bad carbon reference row %v", record)
		}
		ref.add(carbonRow{CrownDiameterM: d, HeightM: h, CarbonTonnes: c})
	}
	if len(ref.rows) == 0 {
		return nil, fmt.Errorf("attributes: carbon reference %s holds no rows", filePath)
	}
	return ref, nil
}

func (ref *CarbonReference) add(row carbonRow) {
	r := row
	ref.rows = append(ref.rows, &r)
	ref.index.Insert(&r)
}

// EstimateTonnes returns the carbon of the calibration row closest to the
// given crown diameter and height. The rtree search box doubles until it
// captures a candidate, then the exact nearest row among candidates wins.
func (ref *CarbonReference) EstimateTonnes(crownDiameterM, heightM float64) float64 {
	if len(ref.rows) == 0 || math.IsNaN(crownDiameterM) || math.IsNaN(heightM) {
		return 0
	}
	radius := 1.0
	for i := 0; i < 16; i++ {
		box := &geom.Bounds{
			Min: geom.Point{X: crownDiameterM - radius, Y: heightM - radius},
			Max: geom.Point{X: crownDiameterM + radius, Y: heightM + radius},
		}
		hits := ref.index.SearchIntersect(box)
		if len(hits) > 0 {
			best := math.Inf(1)
			var bestRow *carbonRow
			for _, hit := range hits {
				row := hit.(*carbonRow)
				dd := row.CrownDiameterM - crownDiameterM
				dh := row.HeightM - heightM
				if d2 := dd*dd + dh*dh; d2 < best {
					best = d2
					bestRow = row
				}
			}
			// a closer row may sit just outside the box corner
			if math.Sqrt(best) <= radius || i == 15 {
				return bestRow.CarbonTonnes
			}
		}
		radius *= 2
	}
	return 0
}
