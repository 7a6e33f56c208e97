package segmentation

import (
	"fmt"
	"sort"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// regionGrowingSegmenter grows crowns outward from each seed, accepting a
// frontier cell against both the apex height and the running mean height of
// the crown grown so far. Seeds take turns in rounds, tallest apex first, so
// neither strategy depends on raster scan order for competition outcomes.
type regionGrowingSegmenter struct {
	params Params
}

type region struct {
	top      *data.TreeTop
	frontier [][2]int
	sumH     float64
	nCells   int
}

func (g *regionGrowingSegmenter) Segment(chm *raster.Grid, tops []*data.TreeTop) (*raster.LabelGrid, error) {
	if err := chm.Validate(); err != nil {
		return nil, fmt.Errorf("segmentation: invalid CHM: %w", err)
	}
	labels := raster.NewLabelGrid(chm)
	if len(tops) == 0 {
		return labels, nil
	}

	ordered := make([]*data.TreeTop, len(tops))
	copy(ordered, tops)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Height != ordered[j].Height {
			return ordered[i].Height > ordered[j].Height
		}
		return ordered[i].ID < ordered[j].ID
	})

	regions := make([]*region, 0, len(ordered))
	for _, top := range ordered {
		labels.Set(top.Col, top.Row, top.ID)
		regions = append(regions, &region{
			top:      top,
			frontier: [][2]int{{top.Col, top.Row}},
			sumH:     top.Height,
			nCells:   1,
		})
	}

	maxR2 := g.params.MaxCrownR * g.params.MaxCrownR
	active := true
	for active {
		active = false
		for _, reg := range regions {
			if len(reg.frontier) == 0 {
				continue
			}
			var next [][2]int
			for _, cell := range reg.frontier {
				for _, off := range neighborOffsets {
					c, r := cell[0]+off[0], cell[1]+off[1]
					if !labels.Contains(c, r) || labels.At(c, r) != 0 {
						continue
					}
					h := chm.At(c, r)
					if !g.accept(h, reg) {
						continue
					}
					if horizontalDist2(labels, c, r, reg.top) > maxR2 {
						continue
					}
					labels.Set(c, r, reg.top.ID)
					reg.sumH += h
					reg.nCells++
					next = append(next, [2]int{c, r})
					active = true
				}
			}
			reg.frontier = next
		}
	}
	return labels, nil
}

// accept applies the Dalponte style vertical predicates: the candidate must
// clear the tree class threshold, a fraction of the apex height, a fraction
// of the running crown mean, and must not rise past the apex.
func (g *regionGrowingSegmenter) accept(h float64, reg *region) bool {
	if h < g.params.ThTree {
		return false
	}
	apexH := reg.top.Height
	if h < g.params.ThSeed*apexH {
		return false
	}
	mean := reg.sumH / float64(reg.nCells)
	if h < g.params.ThCrown*mean {
		return false
	}
	return h <= apexH*apexHeightSlack
}
