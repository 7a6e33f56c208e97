package data

import (
	"encoding/json"
	"math"
)

// Size class buckets by total tree height
const (
	SizeClassSapling = "sapling" // < 5 m
	SizeClassPole    = "pole"    // 5 - 15 m
	SizeClassMature  = "mature"  // 15 - 30 m
	SizeClassVeteran = "veteran" // >= 30 m
)

// StandSummary aggregates the tree records of one or more tiles. It is a
// derived, read only value: recompute it whenever the tree set changes.
type StandSummary struct {
	TreeCount        int                `json:"tree_count"`
	AreaHa           float64            `json:"area_ha"`
	TreesPerHa       float64            `json:"trees_per_ha"`
	BasalAreaM2Ha    float64            `json:"basal_area_m2_ha"`
	VolumeM3Ha       float64            `json:"volume_m3_ha"`
	QuadMeanDiamCm   float64            `json:"-"` // serialized via quadMeanDiamJSON, NaN when no tree has a DBH
	MeanHeight       float64            `json:"mean_height_m"`
	MaxHeight        float64            `json:"max_height_m"`
	CarbonTonnesHa   float64            `json:"carbon_t_ha"`
	SizeClassCounts  map[string]int     `json:"size_class_counts"`
	OldGrowthCount   int                `json:"old_growth_count"`
	TreesWithoutHull int                `json:"trees_without_hull"`
}

// The JSON encoder rejects NaN, so the quadratic mean diameter round-trips
// through a nullable shadow field: null on the wire means no tree had a DBH.
type standSummaryJSON struct {
	summaryAlias
	QuadMeanDiamCm *float64 `json:"quadratic_mean_diameter_cm"`
}

type summaryAlias StandSummary

func (s StandSummary) MarshalJSON() ([]byte, error) {
	shadow := standSummaryJSON{summaryAlias: summaryAlias(s)}
	if !math.IsNaN(s.QuadMeanDiamCm) {
		qmd := s.QuadMeanDiamCm
		shadow.QuadMeanDiamCm = &qmd
	}
	return json.Marshal(shadow)
}

func (s *StandSummary) UnmarshalJSON(payload []byte) error {
	var shadow standSummaryJSON
	if err := json.Unmarshal(payload, &shadow); err != nil {
		return err
	}
	*s = StandSummary(shadow.summaryAlias)
	if shadow.QuadMeanDiamCm != nil {
		s.QuadMeanDiamCm = *shadow.QuadMeanDiamCm
	} else {
		s.QuadMeanDiamCm = math.NaN()
	}
	return nil
}

// RunReport is the user visible outcome of one pipeline run. It makes
// recoverable data loss observable instead of silent.
type RunReport struct {
	Tile                string           `json:"tile"`
	TreesDetected       int              `json:"trees_detected"`
	TreesExcluded       int              `json:"trees_excluded"`
	GeometryFailures    int              `json:"geometry_failures"`
	PointsOutsideExtent int              `json:"points_outside_extent"`
	Warnings            int              `json:"warnings"`
	StageMillis         map[string]int64 `json:"stage_millis,omitempty"`
	Stand               *StandSummary    `json:"stand,omitempty"`
}
