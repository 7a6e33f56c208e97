package io

import (
	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
)

// Contains the minimal data needed to process a single tile, i.e. one LAS
// (or CHM) file in and one folder of inventory artifacts out.
type WorkUnit struct {
	TilePath   string
	Opts       *pipeline.Options
	OutputPath string
}

// TileResult is what a consumer reports back for one processed work unit.
// Err is set when the tile was skipped, Report when it went through.
type TileResult struct {
	TilePath string
	Report   *data.RunReport
	Err      error
}
