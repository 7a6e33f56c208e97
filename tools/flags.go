package tools

import (
	"flag"
)

const (
	CommandDetect = "detect"
	CommandBatch  = "batch"
	CommandMerge  = "merge"
	CommandVerify = "verify"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// InventoryFlags are the tuning flags shared by the detect and batch
// commands.
type InventoryFlags struct {
	Input       *string
	CHM         *string
	Srid        *int
	ZOffset     *float64
	CellSize    *float64
	Smooth      *bool
	WindowSpec  *string
	HMin        *float64
	Algorithm   *string
	Region      *string
	MinPoints   *int
	Alpha       *float64
	VoxelSize   *float64
	Layers      *int
	CarbonTable *string
	Skip3D      *bool
	LabeledLas  *bool
}

type FlagsForCommandDetect struct {
	InventoryFlags
	Output       *string
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandBatch struct {
	InventoryFlags
	Output       *string
	Recursive    *bool
	Workers      *int
	FailFast     *bool
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandMerge struct {
	Input        *string
	Output       *string
	Silent       *bool
	LogTimestamp *bool
}

type FlagsForCommandVerify struct {
	Input        *string
	Silent       *bool
	LogTimestamp *bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of canopy_inventory.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineInventoryFlags(flagCommand *flag.FlagSet) InventoryFlags {
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input las file/folder.")
	chm := defineStringFlagCommand(flagCommand, "chm", "", "", "Specifies a pre-computed canopy height model (ESRI ASCII grid) to use instead of rasterizing the point cloud.")
	srid := defineIntFlagCommand(flagCommand, "srid", "e", 0, "EPSG srid code of input points. 0 disables reprojection of exported tree locations.")
	zOffset := defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to normalized heights, in meters.")
	cellSize := defineFloat64FlagCommand(flagCommand, "cell-size", "c", 0.5, "Canopy height model cell size in meters.")
	smooth := defineBoolFlagCommand(flagCommand, "smooth", "", false, "Applies a 3x3 mean filter to the canopy height model before detection.")
	windowSpec := defineStringFlagCommand(flagCommand, "ws", "w", "linear:1.2,0.05", "Tree top search window, 'const:R' or 'linear:a,b' (radius = a + b*height, meters).")
	hMin := defineFloat64FlagCommand(flagCommand, "hmin", "m", 2.0, "Minimum height in meters for a cell to qualify as a tree top.")
	algorithm := defineStringFlagCommand(flagCommand, "algorithm", "a", "watershed", "Crown delineation strategy, 'watershed' or 'regiongrowing'.")
	region := defineStringFlagCommand(flagCommand, "region", "g", "generic", "Allometric region for DBH estimation, one of boreal, coastal, interior, generic.")
	minPoints := defineIntFlagCommand(flagCommand, "min-points", "p", 1, "Minimum number of points for a segment to produce a tree record.")
	alpha := defineFloat64FlagCommand(flagCommand, "alpha", "", 0, "Alpha shape parameter in meters. 0 derives it from the point spacing.")
	voxelSize := defineFloat64FlagCommand(flagCommand, "voxel-size", "", 0.5, "Voxel edge in meters for crown porosity estimation.")
	layers := defineIntFlagCommand(flagCommand, "layers", "l", 10, "Number of layers in the vertical crown width profile.")
	carbonTable := defineStringFlagCommand(flagCommand, "carbon-table", "", "", "Optional CSV with diameter,height,carbon_t calibration rows.")
	skip3D := defineBoolFlagCommand(flagCommand, "skip-3d", "", false, "Skips per tree 3D crown geometry (hull, alpha shape, porosity, profile).")
	labeledLas := defineBoolFlagCommand(flagCommand, "labeled-las", "", false, "Also writes a LAS copy with the tree id stored in PointSourceID.")

	return InventoryFlags{
		Input:       input,
		CHM:         chm,
		Srid:        srid,
		ZOffset:     zOffset,
		CellSize:    cellSize,
		Smooth:      smooth,
		WindowSpec:  windowSpec,
		HMin:        hMin,
		Algorithm:   algorithm,
		Region:      region,
		MinPoints:   minPoints,
		Alpha:       alpha,
		VoxelSize:   voxelSize,
		Layers:      layers,
		CarbonTable: carbonTable,
		Skip3D:      skip3D,
		LabeledLas:  labeledLas,
	}
}

func ParseFlagsForCommandDetect(args []string) FlagsForCommandDetect {
	flagCommand := flag.NewFlagSet("command-detect", flag.ExitOnError)

	inventoryFlags := defineInventoryFlags(flagCommand)
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the inventory artifacts.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of canopy_inventory.")

	flagCommand.Parse(args)

	return FlagsForCommandDetect{
		InventoryFlags: inventoryFlags,
		Output:         output,
		Silent:         silent,
		LogTimestamp:   logTimestamp,
		Help:           help,
		Version:        version,
	}
}

func ParseFlagsForCommandBatch(args []string) FlagsForCommandBatch {
	flagCommand := flag.NewFlagSet("command-batch", flag.ExitOnError)

	inventoryFlags := defineInventoryFlags(flagCommand)
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the per tile artifacts.")
	recursive := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .las files inside the subfolders.")
	workers := defineIntFlagCommand(flagCommand, "workers", "n", 0, "Number of concurrent tile workers. 0 means one per CPU.")
	failFast := defineBoolFlagCommand(flagCommand, "fail-fast", "", false, "Aborts the batch on the first tile failure instead of skipping the tile.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of canopy_inventory.")

	flagCommand.Parse(args)

	return FlagsForCommandBatch{
		InventoryFlags: inventoryFlags,
		Output:         output,
		Recursive:      recursive,
		Workers:        workers,
		FailFast:       failFast,
		Silent:         silent,
		LogTimestamp:   logTimestamp,
		Help:           help,
		Version:        version,
	}
}

func ParseFlagsForCommandMerge(args []string) FlagsForCommandMerge {
	flagCommand := flag.NewFlagSet("command-merge", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the folder holding the per tile inventory outputs.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the merged stand summary.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")

	flagCommand.Parse(args)

	return FlagsForCommandMerge{
		Input:        input,
		Output:       output,
		Silent:       silent,
		LogTimestamp: logTimestamp,
	}
}

func ParseFlagsForCommandVerify(args []string) FlagsForCommandVerify {
	flagCommand := flag.NewFlagSet("command-verify", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the tile output folder holding the labeled LAS and crown raster to verify.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")

	flagCommand.Parse(args)

	return FlagsForCommandVerify{
		Input:        input,
		Silent:       silent,
		LogTimestamp: logTimestamp,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
