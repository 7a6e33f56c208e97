package las

import (
	"fmt"

	"github.com/edaniels/lidario"
	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/converters"
	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/geometry"
)

// ReadTile loads a height normalized LAS tile into memory. Z is expected to
// already be height above ground; the elevation corrector is applied on top
// (for example a sensor mount offset). An unreadable file is fatal for the
// tile.
func ReadTile(filePath string, corrector converters.ElevationCorrector) ([]*data.Point, *geometry.BoundingBox, error) {
	lf, err := lidario.NewLasFile(filePath, "r")
	if err != nil {
		return nil, nil, fmt.Errorf("las: cannot open %s: %w", filePath, err)
	}
	defer func() {
		if cerr := lf.Close(); cerr != nil {
			glog.Warningf("las: closing %s: %v", filePath, cerr)
		}
	}()

	n := lf.Header.NumberPoints
	if n == 0 {
		return nil, nil, fmt.Errorf("las: %s holds no points", filePath)
	}

	points := make([]*data.Point, 0, n)
	var box *geometry.BoundingBox
	for i := 0; i < n; i++ {
		lp, err := lf.LasPoint(i)
		if err != nil {
			return nil, nil, fmt.Errorf("las: reading point %d of %s: %w", i, filePath, err)
		}
		pd := lp.PointData()
		z := corrector.CorrectElevation(pd.X, pd.Y, pd.Z)

		intensity := pd.Intensity
		if intensity > 255 {
			intensity = 255
		}
		p := data.NewPoint(
			pd.X, pd.Y, z,
			uint8(intensity),
			pd.BitField.Value&7,
			pd.ClassBitField.Value&31,
		)
		points = append(points, p)

		if box == nil {
			box = geometry.NewBoundingBox(p.X, p.X, p.Y, p.Y, p.Z, p.Z)
		} else {
			box.Extend(p.X, p.Y, p.Z)
		}
	}
	return points, box, nil
}

// ReadLabeledTile loads a tile written by WriteLabeledTile, restoring the
// crown label from PointSourceID.
func ReadLabeledTile(filePath string) ([]*data.Point, error) {
	lf, err := lidario.NewLasFile(filePath, "r")
	if err != nil {
		return nil, fmt.Errorf("las: cannot open %s: %w", filePath, err)
	}
	defer func() {
		if cerr := lf.Close(); cerr != nil {
			glog.Warningf("las: closing %s: %v", filePath, cerr)
		}
	}()

	n := lf.Header.NumberPoints
	points := make([]*data.Point, 0, n)
	for i := 0; i < n; i++ {
		lp, err := lf.LasPoint(i)
		if err != nil {
			return nil, fmt.Errorf("las: reading point %d of %s: %w", i, filePath, err)
		}
		pd := lp.PointData()

		intensity := pd.Intensity
		if intensity > 255 {
			intensity = 255
		}
		p := data.NewPoint(
			pd.X, pd.Y, pd.Z,
			uint8(intensity),
			pd.BitField.Value&7,
			pd.ClassBitField.Value&31,
		)
		p.TreeID = int32(pd.PointSourceID)
		points = append(points, p)
	}
	return points, nil
}
