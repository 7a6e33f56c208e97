package io

import (
	"sync"

	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// TileProcessor runs the full inventory pipeline on one tile. Implemented
// in pkg; kept as an interface here so consumers stay testable without
// touching the filesystem heavy pipeline.
type TileProcessor interface {
	ProcessTile(unit *WorkUnit) (*data.RunReport, error)
}

type StandardConsumer struct {
	processor TileProcessor
	failFast  bool
}

func NewStandardConsumer(processor TileProcessor, failFast bool) *StandardConsumer {
	return &StandardConsumer{
		processor: processor,
		failFast:  failFast,
	}
}

// Continually consumes WorkUnits submitted to the work channel, running the
// tile pipeline on each and posting the outcome to the results channel.
// Continues until the work channel is closed. A tile failure is reported as
// a skipped TileResult unless fail-fast is set, in which case the error goes
// to the error channel and the consumer stops processing; it keeps draining
// the work channel so a producer blocked on the bounded channel can finish
// and close it.
func (c *StandardConsumer) Consume(work chan *WorkUnit, results chan *TileResult, errchan chan error, wg *sync.WaitGroup) {
	for {
		unit, ok := <-work
		if !ok {
			break
		}

		report, err := c.processor.ProcessTile(unit)
		if err != nil {
			if c.failFast {
				errchan <- err
				for range work {
				}
				break
			}
			glog.Warningf("skipping tile %s: %v", unit.TilePath, err)
			results <- &TileResult{TilePath: unit.TilePath, Err: err}
			continue
		}
		results <- &TileResult{TilePath: unit.TilePath, Report: report}
	}

	wg.Done()
}
