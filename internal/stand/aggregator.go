package stand

import (
	"errors"
	"math"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// Old growth indicator thresholds; a tree qualifies by height or diameter.
type OldGrowthThresholds struct {
	MinHeightM float64
	MinDBHCm   float64
}

func DefaultOldGrowthThresholds() OldGrowthThresholds {
	return OldGrowthThresholds{MinHeightM: 40, MinDBHCm: 80}
}

// Aggregate rolls per tree records into stand level metrics over the given
// area. NaN attributes (insufficient data trees) are skipped, never treated
// as zero. Zero or negative area is caller misuse and fails fast.
func Aggregate(trees []*data.TreeRecord, areaHa float64, oldGrowth OldGrowthThresholds) (*data.StandSummary, error) {
	if areaHa <= 0 {
		return nil, errors.New("stand: area must be positive")
	}

	summary := &data.StandSummary{
		TreeCount: len(trees),
		AreaHa:    areaHa,
		SizeClassCounts: map[string]int{
			data.SizeClassSapling: 0,
			data.SizeClassPole:    0,
			data.SizeClassMature:  0,
			data.SizeClassVeteran: 0,
		},
	}

	var basalAreaM2, volumeM3, carbonT float64
	var sumHeight, maxHeight float64
	var sumDBH2 float64
	var nDBH int
	for _, t := range trees {
		if !math.IsNaN(t.DBHCm) {
			dbhM := t.DBHCm / 100
			basalAreaM2 += math.Pi * (dbhM / 2) * (dbhM / 2)
			sumDBH2 += t.DBHCm * t.DBHCm
			nDBH++
		}
		if v := t.HullVolumeOrNaN(); !math.IsNaN(v) {
			volumeM3 += v
		} else {
			summary.TreesWithoutHull++
		}
		if !math.IsNaN(t.CarbonTonnes) {
			carbonT += t.CarbonTonnes
		}
		if !math.IsNaN(t.Height) {
			sumHeight += t.Height
			if t.Height > maxHeight {
				maxHeight = t.Height
			}
			summary.SizeClassCounts[sizeClass(t.Height)]++
		}
		if t.Height >= oldGrowth.MinHeightM || t.DBHCm >= oldGrowth.MinDBHCm {
			summary.OldGrowthCount++
		}
	}

	summary.TreesPerHa = float64(len(trees)) / areaHa
	summary.BasalAreaM2Ha = basalAreaM2 / areaHa
	summary.VolumeM3Ha = volumeM3 / areaHa
	summary.CarbonTonnesHa = carbonT / areaHa
	if nDBH > 0 {
		summary.QuadMeanDiamCm = math.Sqrt(sumDBH2 / float64(nDBH))
	} else {
		summary.QuadMeanDiamCm = math.NaN()
	}
	if len(trees) > 0 {
		summary.MeanHeight = sumHeight / float64(len(trees))
	}
	summary.MaxHeight = maxHeight
	return summary, nil
}

// OldGrowthTrees filters the records qualifying as old growth indicators.
func OldGrowthTrees(trees []*data.TreeRecord, thresholds OldGrowthThresholds) []*data.TreeRecord {
	var out []*data.TreeRecord
	for _, t := range trees {
		if t.Height >= thresholds.MinHeightM || t.DBHCm >= thresholds.MinDBHCm {
			out = append(out, t)
		}
	}
	return out
}

// Merge combines per tile summaries: counts and areas sum, ratios re-derive
// from the sums, so two tiles merged equal one run over their union.
func Merge(summaries []*data.StandSummary) (*data.StandSummary, error) {
	if len(summaries) == 0 {
		return nil, errors.New("stand: nothing to merge")
	}
	merged := &data.StandSummary{
		SizeClassCounts: map[string]int{
			data.SizeClassSapling: 0,
			data.SizeClassPole:    0,
			data.SizeClassMature:  0,
			data.SizeClassVeteran: 0,
		},
		QuadMeanDiamCm: math.NaN(),
	}
	var basalAreaM2, volumeM3, carbonT float64
	var sumDBH2 float64
	var nDBH int
	var heightWeighted float64
	for _, s := range summaries {
		merged.TreeCount += s.TreeCount
		merged.AreaHa += s.AreaHa
		merged.OldGrowthCount += s.OldGrowthCount
		merged.TreesWithoutHull += s.TreesWithoutHull
		basalAreaM2 += s.BasalAreaM2Ha * s.AreaHa
		volumeM3 += s.VolumeM3Ha * s.AreaHa
		carbonT += s.CarbonTonnesHa * s.AreaHa
		heightWeighted += s.MeanHeight * float64(s.TreeCount)
		if !math.IsNaN(s.QuadMeanDiamCm) {
			n := s.TreeCount
			sumDBH2 += s.QuadMeanDiamCm * s.QuadMeanDiamCm * float64(n)
			nDBH += n
		}
		if s.MaxHeight > merged.MaxHeight {
			merged.MaxHeight = s.MaxHeight
		}
		for class, count := range s.SizeClassCounts {
			merged.SizeClassCounts[class] += count
		}
	}
	if merged.AreaHa <= 0 {
		return nil, errors.New("stand: merged area must be positive")
	}
	merged.TreesPerHa = float64(merged.TreeCount) / merged.AreaHa
	merged.BasalAreaM2Ha = basalAreaM2 / merged.AreaHa
	merged.VolumeM3Ha = volumeM3 / merged.AreaHa
	merged.CarbonTonnesHa = carbonT / merged.AreaHa
	if nDBH > 0 {
		merged.QuadMeanDiamCm = math.Sqrt(sumDBH2 / float64(nDBH))
	}
	if merged.TreeCount > 0 {
		merged.MeanHeight = heightWeighted / float64(merged.TreeCount)
	}
	return merged, nil
}

func sizeClass(height float64) string {
	switch {
	case height < 5:
		return data.SizeClassSapling
	case height < 15:
		return data.SizeClassPole
	case height < 30:
		return data.SizeClassMature
	default:
		return data.SizeClassVeteran
	}
}
