package las

import (
	"fmt"
	"math"

	"github.com/edaniels/lidario"
	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// WriteLabeledTile writes the labeled cloud back to LAS with the crown label
// stored in PointSourceID, so GIS tools can color points per tree. Labels
// beyond the uint16 range are written as 0 and counted.
func WriteLabeledTile(filePath string, points []*data.Point) (err error) {
	lf, err := lidario.NewLasFile(filePath, "w")
	if err != nil {
		return fmt.Errorf("las: cannot create %s: %w", filePath, err)
	}
	defer func() {
		if cerr := lf.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = lf.AddHeader(lidario.LasHeader{PointFormatID: 0}); err != nil {
		return err
	}

	overflow := 0
	for _, p := range points {
		sourceID := uint16(0)
		if p.TreeID > 0 && p.TreeID <= math.MaxUint16 {
			sourceID = uint16(p.TreeID)
		} else if p.TreeID > math.MaxUint16 {
			overflow++
		}
		record := &lidario.PointRecord0{
			X:         p.X,
			Y:         p.Y,
			Z:         p.Z,
			Intensity: uint16(p.Intensity),
			BitField: lidario.PointBitField{
				Value: (p.ReturnNumber & 7) | (1 << 3),
			},
			ClassBitField: lidario.ClassificationBitField{
				Value: p.Classification,
			},
			PointSourceID: sourceID,
		}
		if err = lf.AddLasPoint(record); err != nil {
			return err
		}
	}
	if overflow > 0 {
		glog.Warningf("las: %d points carry tree ids beyond uint16, written unassigned", overflow)
	}
	return nil
}
