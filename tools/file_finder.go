package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/pipeline"
)

type FileFinder interface {
	GetLasFilesToProcess(opts *pipeline.Options) []string
	GetTileReportsToMerge(inputFolder string) []string
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetLasFilesToProcess(opts *pipeline.Options) []string {
	// If folder processing is not enabled then las file is given by -input flag, otherwise look for las in -input folder
	// eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}
	}

	return f.getLasFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getLasFilesFromInputFolder(opts *pipeline.Options) []string {
	var lasFiles = make([]string, 0)

	baseInfo, _ := os.Stat(opts.Input)
	err := filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !opts.Recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			} else {
				if strings.ToLower(filepath.Ext(info.Name())) == ".las" {
					lasFiles = append(lasFiles, path)
				}
			}
			return nil
		},
	)

	if err != nil {
		glog.Fatal(err)
	}

	return lasFiles
}

// GetTileReportsToMerge looks one folder level below the input for the
// report.json artifacts written by detect/batch, one per tile.
func (f *StandardFileFinder) GetTileReportsToMerge(inputFolder string) []string {
	var reports = make([]string, 0)

	entries, err := os.ReadDir(inputFolder)
	if err != nil {
		glog.Fatal(err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		reportPath := filepath.Join(inputFolder, entry.Name(), "report.json")
		if _, err := os.Stat(reportPath); err == nil {
			reports = append(reports, reportPath)
		}
	}

	return reports
}
