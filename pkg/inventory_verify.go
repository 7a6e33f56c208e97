package pkg

import (
	"fmt"
	"os"
	"path"

	"github.com/habitat-map/canopy_inventory/internal/las"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/raster"
	"github.com/habitat-map/canopy_inventory/tools"
)

// InventoryVerify re-reads the labeled LAS and the crown raster of a tile
// output folder and checks that every assigned point lies inside the cell
// region carrying its own crown label. A violation means the artifacts
// drifted apart and the folder should be regenerated.
type InventoryVerify struct{}

func NewInventoryVerify() IInventory {
	return &InventoryVerify{}
}

func (verify *InventoryVerify) RunInventory(opts *pipeline.Options) error {
	lasPath := path.Join(opts.Input, "labeled.las")
	crownsPath := path.Join(opts.Input, "crowns.asc")
	for _, p := range []string{lasPath, crownsPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("verify needs %s: %w", p, err)
		}
	}

	tools.LogOutput("> reading", crownsPath)
	labels, err := raster.ReadLabelsEsriAscii(crownsPath)
	if err != nil {
		return err
	}

	// both rasters come from the same tile run and must stay georeferenced
	// identically, or the point containment check below is meaningless
	chmPath := path.Join(opts.Input, "chm.asc")
	if _, err := os.Stat(chmPath); err == nil {
		heightModel, err := raster.ReadEsriAscii(chmPath)
		if err != nil {
			return err
		}
		if heightModel.Cols != labels.Cols || heightModel.Rows != labels.Rows ||
			!tools.IsFloatEqual(heightModel.CellSize, labels.CellSize) ||
			!tools.IsFloatEqual(heightModel.Xmin, labels.Xmin) ||
			!tools.IsFloatEqual(heightModel.Ymax, labels.Ymax) {
			return fmt.Errorf("georeferencing of %s drifted from %s", crownsPath, chmPath)
		}
	}

	tools.LogOutput("> reading", lasPath)
	points, err := las.ReadLabeledTile(lasPath)
	if err != nil {
		return err
	}

	violations := 0
	assigned := 0
	for _, p := range points {
		if p.TreeID == 0 {
			continue
		}
		assigned++
		label, inside := labels.LabelAt(p.X, p.Y)
		if !inside || label != p.TreeID {
			violations++
		}
	}

	tools.LogOutput("> verified", assigned, "assigned points,", violations, "violations")
	if violations > 0 {
		return fmt.Errorf("containment violated for %d of %d assigned points", violations, assigned)
	}

	return nil
}
