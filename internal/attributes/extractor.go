package attributes

import (
	"math"
	"sort"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// Ratio thresholds classifying crown shape from height : crown diameter.
const (
	narrowShapeRatio = 2.0
	mediumShapeRatio = 1.2
)

// Extractor aggregates labeled points into one immutable record per tree.
type Extractor struct {
	region    Region
	carbonRef *CarbonReference
	minPoints int
}

func NewExtractor(region Region, carbonRef *CarbonReference, minPoints int) *Extractor {
	if minPoints < 1 {
		minPoints = 1
	}
	return &Extractor{region: region, carbonRef: carbonRef, minPoints: minPoints}
}

// Extract builds tree records from labeled point groups. Trees with fewer
// than the minimum point count are excluded and counted, never fatal.
// Records come back sorted by tree id.
func (e *Extractor) Extract(groups map[int32][]*data.Point, tops []*data.TreeTop) (records []*data.TreeRecord, excluded int) {
	topByID := make(map[int32]*data.TreeTop, len(tops))
	for _, top := range tops {
		topByID[top.ID] = top
	}

	coeff, fallback := CoefficientsFor(e.region)

	for id, points := range groups {
		if len(points) < e.minPoints {
			glog.V(1).Infof("attributes: tree %d excluded, only %d points (min %d)", id, len(points), e.minPoints)
			excluded++
			continue
		}
		top := topByID[id]
		records = append(records, e.summarize(id, points, top, coeff, fallback))
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, excluded
}

func (e *Extractor) summarize(id int32, points []*data.Point, top *data.TreeTop, coeff AllometricCoefficients, fallback bool) *data.TreeRecord {
	heights := make([]float64, len(points))
	var sumX, sumY float64
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	maxZ := math.Inf(-1)
	apexX, apexY := 0.0, 0.0
	for i, p := range points {
		heights[i] = p.Z
		sumX += p.X
		sumY += p.Y
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
		if p.Z > maxZ {
			maxZ = p.Z
			apexX, apexY = p.X, p.Y
		}
	}
	n := float64(len(points))
	cx, cy := sumX/n, sumY/n

	sort.Float64s(heights)
	heightMean := stat.Mean(heights, nil)
	crownBase := stat.Quantile(0.10, stat.Empirical, heights, nil)

	// Prefer the CHM apex when available; a 1-3 point crown may lack one.
	if top != nil {
		apexX, apexY = top.X, top.Y
	}

	diamX := maxX - minX
	diamY := maxY - minY
	diam := (diamX + diamY) / 2

	apexOffset := math.Hypot(apexX-cx, apexY-cy)
	asymmetry := math.NaN()
	if meanRadius := meanHorizontalRadius(points, cx, cy); meanRadius > 0 {
		asymmetry = apexOffset / meanRadius
	}

	rec := &data.TreeRecord{
		ID:              id,
		X:               cx,
		Y:               cy,
		XApex:           apexX,
		YApex:           apexY,
		Height:          maxZ,
		HeightMean:      heightMean,
		CrownBaseHeight: crownBase,
		CrownDepth:      maxZ - crownBase,
		NPoints:         len(points),
		CrownDiameterX:  diamX,
		CrownDiameterY:  diamY,
		CrownDiameter:   diam,
		CrownShape:      classifyShape(maxZ, diam),
		ApexOffset:      apexOffset,
		CrownAsymmetry:  asymmetry,
		DBHCm:           coeff.A * math.Pow(maxZ, coeff.B),
		DBHFallback:     fallback,
	}
	if e.carbonRef != nil {
		rec.CarbonTonnes = e.carbonRef.EstimateTonnes(diam, maxZ)
	}
	return rec
}

func meanHorizontalRadius(points []*data.Point, cx, cy float64) float64 {
	var sum float64
	for _, p := range points {
		sum += math.Hypot(p.X-cx, p.Y-cy)
	}
	return sum / float64(len(points))
}

func classifyShape(height, diameter float64) string {
	if diameter <= 0 {
		return data.CrownShapeNarrow
	}
	switch ratio := height / diameter; {
	case ratio >= narrowShapeRatio:
		return data.CrownShapeNarrow
	case ratio >= mediumShapeRatio:
		return data.CrownShapeMedium
	default:
		return data.CrownShapeBroad
	}
}
