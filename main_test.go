package main

import (
	"os"
	"path"
	"testing"

	"go.viam.com/test"

	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/segmentation"
)

func validOptions(t *testing.T) *pipeline.Options {
	t.Helper()

	chmPath := path.Join(t.TempDir(), "chm.asc")
	err := os.WriteFile(chmPath, []byte("ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n5\n"), 0o644)
	test.That(t, err, test.ShouldBeNil)

	return &pipeline.Options{
		CHMPath:       chmPath,
		DetectOptions: &pipeline.DetectOptions{Output: t.TempDir()},
		CellSize:      0.5,
		HMin:          2.0,
		MinPoints:     1,
		ProfileLayers: 10,
		WindowSpec:    "linear:1.2,0.05",
		Algorithm:     segmentation.Watershed,
		SegParams:     segmentation.DefaultParams(),
		Region:        "generic",
	}
}

func TestValidateOptionsForInventory(t *testing.T) {
	msg, ok := validateOptionsForInventory(validOptions(t))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, msg, test.ShouldEqual, "")
}

func TestValidateOptionsRejectsBadCarbonTable(t *testing.T) {
	opts := validOptions(t)
	opts.CarbonTable = path.Join(t.TempDir(), "missing.csv")

	msg, ok := validateOptionsForInventory(opts)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, msg, test.ShouldContainSubstring, "carbon-table")
}

func TestValidateOptionsRejectsMalformedCarbonTable(t *testing.T) {
	opts := validOptions(t)
	opts.CarbonTable = path.Join(t.TempDir(), "table.csv")
	err := os.WriteFile(opts.CarbonTable, []byte("not,a,carbon,table\n"), 0o644)
	test.That(t, err, test.ShouldBeNil)

	msg, ok := validateOptionsForInventory(opts)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, msg, test.ShouldContainSubstring, "carbon-table")
}
