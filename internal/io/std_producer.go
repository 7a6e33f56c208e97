package io

import (
	"path"
	"path/filepath"
	"sync"

	"github.com/habitat-map/canopy_inventory/internal/pipeline"
)

type StandardProducer struct {
	basePath  string
	tilePaths []string
	options   *pipeline.Options
}

func NewStandardProducer(basePath string, tilePaths []string, options *pipeline.Options) *StandardProducer {
	return &StandardProducer{
		basePath:  basePath,
		tilePaths: tilePaths,
		options:   options,
	}
}

// Submits one WorkUnit per tile to the provided work channel. Each tile gets
// its own artifact subfolder named after the file and its own copy of the
// options, so no consumer can mutate another's run. Closes the channel when
// all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup) {
	for _, tilePath := range p.tilePaths {
		work <- &WorkUnit{
			TilePath:   tilePath,
			Opts:       p.options.Copy(),
			OutputPath: path.Join(p.basePath, fileNameWithoutExtension(tilePath)),
		}
	}
	close(work)
	wg.Done()
}

func fileNameWithoutExtension(filePath string) string {
	nameWext := filepath.Base(filePath)
	extension := filepath.Ext(nameWext)
	return nameWext[0 : len(nameWext)-len(extension)]
}
