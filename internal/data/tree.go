package data

import "math"

// TreeTop is a candidate tree apex found as a local maximum in the CHM.
// ID matches the crown label assigned during segmentation.
type TreeTop struct {
	ID     int32
	Col    int
	Row    int
	X      float64
	Y      float64
	Height float64
}

// Crown shape classes derived from the height to crown diameter ratio
const (
	CrownShapeNarrow = "Narrow"
	CrownShapeMedium = "Medium"
	CrownShapeBroad  = "Broad"
)

// LayerWidth is one entry of the vertical crown width profile.
type LayerWidth struct {
	ZLow      float64
	ZHigh     float64
	MeanWidth float64
	MaxWidth  float64
}

// CrownMetrics holds the 3D geometry attributes of a single crown.
// All fields are NaN when the geometry could not be computed.
type CrownMetrics struct {
	HullVolume      float64
	HullSurfaceArea float64
	AlphaVolume     float64
	Alpha           float64
	Porosity        float64
	Solidity        float64
	AsymmetryIndex  float64
	LeanDirection   float64
	Profile         []LayerWidth
}

// TreeRecord is the per tree output unit. Records are immutable once the
// attribute extractor has produced them. Missing numeric attributes are NaN.
type TreeRecord struct {
	ID              int32
	X               float64 // footprint centroid
	Y               float64
	XApex           float64
	YApex           float64
	Height          float64 // max z
	HeightMean      float64
	CrownBaseHeight float64 // 10th percentile of z
	CrownDepth      float64
	NPoints         int
	CrownDiameterX  float64
	CrownDiameterY  float64
	CrownDiameter   float64
	CrownShape      string
	ApexOffset      float64
	CrownAsymmetry  float64
	DBHCm           float64
	DBHFallback     bool // generic allometric coefficients were substituted
	CarbonTonnes    float64
	Metrics         *CrownMetrics
}

// HullVolumeOrNaN returns the crown hull volume, NaN when 3D metrics are absent.
func (t *TreeRecord) HullVolumeOrNaN() float64 {
	if t.Metrics == nil {
		return math.NaN()
	}
	return t.Metrics.HullVolume
}

func NewCrownMetricsNaN() *CrownMetrics {
	nan := math.NaN()
	return &CrownMetrics{
		HullVolume:      nan,
		HullSurfaceArea: nan,
		AlphaVolume:     nan,
		Alpha:           nan,
		Porosity:        nan,
		Solidity:        nan,
		AsymmetryIndex:  nan,
		LeanDirection:   nan,
	}
}
