package pipeline

import (
	"github.com/habitat-map/canopy_inventory/internal/segmentation"
)

// Contains the options needed for the tree inventory pipeline. Built once
// from command line flags, validated in main and passed by reference,
// never mutated after that.
type Options struct {
	Input            string                 // Input LAS file/folder
	CHMPath          string                 // Optional pre-computed CHM (ESRI ASCII grid)
	Srid             int                    // EPSG code of input coordinates, 0 disables reprojection
	ZOffset          float64                // Offset in meters applied to normalized heights
	CellSize         float64                // CHM cell size in meters
	Smooth           bool                   // 3x3 mean smoothing of the CHM
	WindowSpec       string                 // Tree top search window, const:R or linear:a,b
	HMin             float64                // Minimum height to qualify as a tree
	Algorithm        segmentation.Algorithm // Crown delineation strategy
	SegParams        segmentation.Params    // Crown growth constraints
	Region           string                 // Allometric region key
	MinPoints        int                    // Minimum points per tree record
	Alpha            float64                // Alpha shape parameter, 0 = auto
	VoxelSize        float64                // Porosity voxel edge in meters
	ProfileLayers    int                    // Vertical profile layer count
	CarbonTable      string                 // Optional carbon calibration CSV
	Skip3D           bool                   // Skip per tree 3D geometry
	WriteLabeledLas  bool                   // Also write the labeled LAS artifact
	FolderProcessing bool                   // Process all LAS files in the input folder
	Recursive        bool                   // Recursive lookup of LAS files in subfolders
	Workers          int                    // Concurrent tile workers for batch processing
	FailFast         bool                   // Abort the batch on the first tile failure

	Command       string
	DetectOptions *DetectOptions
	MergeOptions  *MergeOptions
	VerifyOptions *VerifyOptions
}

type DetectOptions struct {
	Output string // Output folder for the per tile artifacts
}

type MergeOptions struct {
	Output string // Output folder for the merged stand summary
}

type VerifyOptions struct {
	Output string // Folder holding the artifacts to verify
}

func (opt *Options) Copy() *Options {
	newOpt := *opt
	if opt.DetectOptions != nil {
		detectOpt := *opt.DetectOptions
		newOpt.DetectOptions = &detectOpt
	}
	if opt.MergeOptions != nil {
		mergeOpt := *opt.MergeOptions
		newOpt.MergeOptions = &mergeOpt
	}
	if opt.VerifyOptions != nil {
		verifyOpt := *opt.VerifyOptions
		newOpt.VerifyOptions = &verifyOpt
	}
	return &newOpt
}
