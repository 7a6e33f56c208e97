package segmentation

import (
	"container/heap"
	"fmt"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/raster"
)

// watershedSegmenter floods outward from the seeds over the inverted CHM.
// Cells are claimed in order of decreasing height, so when two crowns
// compete for a cell the one reaching it through taller terrain wins first.
// Seed priority ties resolve by apex height descending, then row-major index.
type watershedSegmenter struct {
	params Params
}

type floodCell struct {
	col, row   int
	height     float64
	seedHeight float64
	label      int32
	order      int64
}

type floodQueue []*floodCell

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].height != q[j].height {
		return q[i].height > q[j].height
	}
	if q[i].seedHeight != q[j].seedHeight {
		return q[i].seedHeight > q[j].seedHeight
	}
	return q[i].order < q[j].order
}
func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *floodQueue) Push(x any)   { *q = append(*q, x.(*floodCell)) }
func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func (s *watershedSegmenter) Segment(chm *raster.Grid, tops []*data.TreeTop) (*raster.LabelGrid, error) {
	if err := chm.Validate(); err != nil {
		return nil, fmt.Errorf("segmentation: invalid CHM: %w", err)
	}
	labels := raster.NewLabelGrid(chm)
	if len(tops) == 0 {
		return labels, nil
	}

	topByID := make(map[int32]*data.TreeTop, len(tops))
	queue := make(floodQueue, 0, len(tops))
	var order int64
	for _, top := range tops {
		topByID[top.ID] = top
		queue = append(queue, &floodCell{
			col:        top.Col,
			row:        top.Row,
			height:     top.Height,
			seedHeight: top.Height,
			label:      top.ID,
			order:      order,
		})
		order++
	}
	heap.Init(&queue)

	maxR2 := s.params.MaxCrownR * s.params.MaxCrownR
	for queue.Len() > 0 {
		cell := heap.Pop(&queue).(*floodCell)
		if labels.At(cell.col, cell.row) != 0 {
			continue
		}
		labels.Set(cell.col, cell.row, cell.label)
		top := topByID[cell.label]

		for _, off := range neighborOffsets {
			c, r := cell.col+off[0], cell.row+off[1]
			if !labels.Contains(c, r) || labels.At(c, r) != 0 {
				continue
			}
			h := chm.At(c, r)
			if !s.claimable(h, top) {
				continue
			}
			if horizontalDist2(labels, c, r, top) > maxR2 {
				continue
			}
			heap.Push(&queue, &floodCell{
				col:        c,
				row:        r,
				height:     h,
				seedHeight: top.Height,
				label:      cell.label,
				order:      order,
			})
			order++
		}
	}
	return labels, nil
}

func (s *watershedSegmenter) claimable(h float64, top *data.TreeTop) bool {
	if h < s.params.ThTree {
		return false
	}
	if h < s.params.ThSeed*top.Height {
		return false
	}
	return h <= top.Height*apexHeightSlack
}
