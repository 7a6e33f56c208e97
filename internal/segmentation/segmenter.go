package segmentation

import (
	"fmt"
	"strings"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// Algorithm selects the crown delineation strategy. Both strategies honor
// the same contract: a label raster with pairwise disjoint crown regions,
// each anchored to exactly one tree top, label 0 for background.
type Algorithm string

const (
	Watershed     Algorithm = "WATERSHED"
	RegionGrowing Algorithm = "REGIONGROWING"
)

func ParseAlgorithm(value string) Algorithm {
	switch strings.Trim(strings.ToUpper(value), " ") {
	case "WATERSHED":
		return Watershed
	case "REGIONGROWING", "REGION-GROWING", "DALPONTE":
		return RegionGrowing
	}
	return ""
}

// Params bound crown growth for both strategies.
type Params struct {
	ThTree    float64 // minimum height for a cell to be claimable
	ThSeed    float64 // fraction of apex height a cell must reach
	ThCrown   float64 // fraction of the running crown mean (region growing)
	MaxCrownR float64 // maximum crown radius in meters
}

// DefaultParams follow the thresholds commonly used for conifer stands.
func DefaultParams() Params {
	return Params{ThTree: 2.0, ThSeed: 0.45, ThCrown: 0.55, MaxCrownR: 10.0}
}

func (p Params) Validate() error {
	if p.ThSeed <= 0 || p.ThSeed >= 1 || p.ThCrown <= 0 || p.ThCrown >= 1 {
		return fmt.Errorf("segmentation: seed/crown thresholds must be in (0,1), got %f/%f", p.ThSeed, p.ThCrown)
	}
	if p.MaxCrownR <= 0 {
		return fmt.Errorf("segmentation: max crown radius must be positive, got %f", p.MaxCrownR)
	}
	return nil
}

// Cells may slightly exceed their apex height after smoothing; cap the
// acceptance bound at this factor of the apex height.
const apexHeightSlack = 1.05

type Segmenter interface {
	Segment(chm *raster.Grid, tops []*data.TreeTop) (*raster.LabelGrid, error)
}

// NewSegmenter builds the segmenter for the requested algorithm.
func NewSegmenter(algorithm Algorithm, params Params) (Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	switch algorithm {
	case Watershed:
		return &watershedSegmenter{params: params}, nil
	case RegionGrowing:
		return &regionGrowingSegmenter{params: params}, nil
	}
	return nil, fmt.Errorf("segmentation: unknown algorithm %q", algorithm)
}

func horizontalDist2(l *raster.LabelGrid, col, row int, top *data.TreeTop) float64 {
	dx := float64(col-top.Col) * l.CellSize
	dy := float64(row-top.Row) * l.CellSize
	return dx*dx + dy*dy
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
