package pkg

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/export"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/stand"
	"github.com/habitat-map/canopy_inventory/tools"
)

// InventoryMerge unions the per tile outputs of a batch run into one stand:
// tree tables concatenated with renumbered ids, stand summaries summed over
// counts and areas before ratios are re-derived.
type InventoryMerge struct {
	fileFinder tools.FileFinder
}

func NewInventoryMerge(fileFinder tools.FileFinder) IInventory {
	return &InventoryMerge{
		fileFinder: fileFinder,
	}
}

func (merge *InventoryMerge) RunInventory(opts *pipeline.Options) error {
	tools.LogOutput("Preparing list of tile outputs to merge...")

	reportPaths := merge.fileFinder.GetTileReportsToMerge(opts.Input)
	if len(reportPaths) == 0 {
		return fmt.Errorf("no per tile report.json found under %s", opts.Input)
	}

	if err := tools.CreateDirectoryIfDoesNotExist(opts.MergeOptions.Output); err != nil {
		return err
	}

	summaries := make([]*data.StandSummary, 0, len(reportPaths))
	tileFolders := make([]string, 0, len(reportPaths))
	for _, reportPath := range reportPaths {
		tools.LogOutput("> merging", reportPath)
		report, err := export.ReadRunReport(reportPath)
		if err != nil {
			return err
		}
		if report.Stand == nil {
			return fmt.Errorf("%s carries no stand summary", reportPath)
		}
		summaries = append(summaries, report.Stand)
		tileFolders = append(tileFolders, filepath.Dir(reportPath))
	}

	merged, err := stand.Merge(summaries)
	if err != nil {
		return err
	}

	if err := export.WriteStandSummary(path.Join(opts.MergeOptions.Output, "stand.json"), merged); err != nil {
		return err
	}

	if err := merge.mergeTreeTables(tileFolders, path.Join(opts.MergeOptions.Output, "trees.csv")); err != nil {
		return err
	}

	tools.LogOutput("> done merging", len(tileFolders), "tiles,", merged.TreeCount, "trees")

	return nil
}

// mergeTreeTables concatenates the per tile trees.csv files. Tree ids are
// tile-local, so rows are renumbered sequentially to keep ids unique in the
// merged table.
func (merge *InventoryMerge) mergeTreeTables(tileFolders []string, outputPath string) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	nextID := 1
	headerWritten := false

	for _, folder := range tileFolders {
		rows, err := readCSVFile(filepath.Join(folder, "trees.csv"))
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		if !headerWritten {
			if err := writer.Write(rows[0]); err != nil {
				return err
			}
			headerWritten = true
		}
		for _, row := range rows[1:] {
			if len(row) > 0 {
				row[0] = strconv.Itoa(nextID)
				nextID++
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func readCSVFile(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return csv.NewReader(file).ReadAll()
}
