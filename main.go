package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/habitat-map/canopy_inventory/internal/attributes"
	"github.com/habitat-map/canopy_inventory/internal/detection"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/segmentation"
	"github.com/habitat-map/canopy_inventory/pkg"
	"github.com/habitat-map/canopy_inventory/pkg/algorithm_manager"
	"github.com/habitat-map/canopy_inventory/tools"
)

const VERSION = "0.9.0"

const logo = `
                                          _                      _
  ___ __ _ _ __   ___  _ __  _   _      (_)_ ____   _____ _ __ | |_ ___  _ __ _   _
 / __/ _  | '_ \ / _ \| '_ \| | | |     | | '_ \ \ / / _ \ '_ \| __/ _ \| '__| | | |
| (_| (_| | | | | (_) | |_) | |_| |     | | | | \ V /  __/ | | | || (_) | |  | |_| |
 \___\__,_|_| |_|\___/| .__/ \__, |_____|_|_| |_|\_/ \___|_| |_|\__\___/|_|   \__, |
                      |_|    |___/|_____|                                     |___/
        A lidar tree inventory pipeline written in golang - YYYY
`

func main() {
	log.SetPrefix("[canopy] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [detect|batch|merge|verify].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandDetect:
		mainCommandDetect(args)
	case tools.CommandBatch:
		mainCommandBatch(args)
	case tools.CommandMerge:
		mainCommandMerge(args)
	case tools.CommandVerify:
		mainCommandVerify(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [detect|batch|merge|verify]", cmd)
	}
}

func mainCommandDetect(args []string) {
	flags := tools.ParseFlagsForCommandDetect(args)

	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Version {
		printVersion()
		return
	}

	applyLoggingFlags(*flags.Silent, *flags.LogTimestamp)

	opts := optionsFromInventoryFlags(&flags.InventoryFlags)
	opts.Command = tools.CommandDetect
	opts.DetectOptions = &pipeline.DetectOptions{
		Output: *flags.Output,
	}

	if msg, res := validateOptionsForInventory(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	err := pkg.NewInventory(tools.NewStandardFileFinder(), algorithm_manager.NewAlgorithmManager(opts)).RunInventory(opts)

	if err != nil {
		log.Fatal("Error while processing: ", err)
	} else {
		tools.LogOutput("Inventory Completed")
	}
}

func mainCommandBatch(args []string) {
	flags := tools.ParseFlagsForCommandBatch(args)

	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Version {
		printVersion()
		return
	}

	applyLoggingFlags(*flags.Silent, *flags.LogTimestamp)

	opts := optionsFromInventoryFlags(&flags.InventoryFlags)
	opts.Command = tools.CommandBatch
	opts.FolderProcessing = true
	opts.Recursive = *flags.Recursive
	opts.Workers = *flags.Workers
	opts.FailFast = *flags.FailFast
	opts.DetectOptions = &pipeline.DetectOptions{
		Output: *flags.Output,
	}

	if msg, res := validateOptionsForInventory(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	err := pkg.NewInventoryBatch(tools.NewStandardFileFinder(), algorithm_manager.NewAlgorithmManager(opts)).RunInventory(opts)

	if err != nil {
		log.Fatal("Error while processing: ", err)
	} else {
		tools.LogOutput("Batch Completed")
	}
}

func mainCommandMerge(args []string) {
	flags := tools.ParseFlagsForCommandMerge(args)

	applyLoggingFlags(*flags.Silent, *flags.LogTimestamp)

	opts := &pipeline.Options{
		Input:   *flags.Input,
		Command: tools.CommandMerge,
		MergeOptions: &pipeline.MergeOptions{
			Output: *flags.Output,
		},
	}

	if msg, res := validateOptionsForCommandMerge(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	err := pkg.NewInventoryMerge(tools.NewStandardFileFinder()).RunInventory(opts)

	if err != nil {
		log.Fatal("Error while merging: ", err)
	} else {
		tools.LogOutput("Merge Completed")
	}
}

func mainCommandVerify(args []string) {
	flags := tools.ParseFlagsForCommandVerify(args)

	applyLoggingFlags(*flags.Silent, *flags.LogTimestamp)

	opts := &pipeline.Options{
		Input:   *flags.Input,
		Command: tools.CommandVerify,
		VerifyOptions: &pipeline.VerifyOptions{
			Output: *flags.Input,
		},
	}

	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		log.Fatal("Error parsing input parameters: input folder not found")
	}

	err := pkg.NewInventoryVerify().RunInventory(opts)

	if err != nil {
		log.Fatal("Verification failed: ", err)
	} else {
		tools.LogOutput("Verification Completed")
	}
}

func optionsFromInventoryFlags(flags *tools.InventoryFlags) *pipeline.Options {
	params := segmentation.DefaultParams()

	return &pipeline.Options{
		Input:           *flags.Input,
		CHMPath:         *flags.CHM,
		Srid:            *flags.Srid,
		ZOffset:         *flags.ZOffset,
		CellSize:        *flags.CellSize,
		Smooth:          *flags.Smooth,
		WindowSpec:      *flags.WindowSpec,
		HMin:            *flags.HMin,
		Algorithm:       segmentation.ParseAlgorithm(*flags.Algorithm),
		SegParams:       params,
		Region:          *flags.Region,
		MinPoints:       *flags.MinPoints,
		Alpha:           *flags.Alpha,
		VoxelSize:       *flags.VoxelSize,
		ProfileLayers:   *flags.Layers,
		CarbonTable:     *flags.CarbonTable,
		Skip3D:          *flags.Skip3D,
		WriteLabeledLas: *flags.LabeledLas,
	}
}

// Validates the input options provided to the detect and batch commands,
// checking that the inputs exist and the tuning parameters parse.
func validateOptionsForInventory(opts *pipeline.Options) (string, bool) {
	if opts.Input == "" && opts.CHMPath == "" {
		return "either -input or -chm must be given", false
	}
	if opts.Input != "" {
		if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
			return "input file/folder not found", false
		}
	}
	if opts.CHMPath != "" {
		if _, err := os.Stat(opts.CHMPath); os.IsNotExist(err) {
			return "chm file not found", false
		}
	}
	if opts.DetectOptions.Output == "" {
		return "output folder must be given", false
	}
	if err := tools.CreateDirectoryIfDoesNotExist(opts.DetectOptions.Output); err != nil {
		return "cannot create output folder: " + err.Error(), false
	}

	if opts.CellSize <= 0 {
		return "cell-size must be positive", false
	}
	if opts.HMin < 0 {
		return "hmin cannot be negative", false
	}
	if opts.MinPoints < 1 {
		return "min-points must be at least 1", false
	}
	if opts.ProfileLayers < 1 {
		return "layers must be at least 1", false
	}
	if _, err := detection.ParseWindowSpec(opts.WindowSpec); err != nil {
		return err.Error(), false
	}
	if opts.Algorithm == "" {
		return "algorithm must be one of watershed, regiongrowing", false
	}
	if err := opts.SegParams.Validate(); err != nil {
		return err.Error(), false
	}
	if _, known := attributes.ParseRegion(opts.Region); !known {
		return "region must be one of boreal, coastal, interior, generic", false
	}
	if opts.CarbonTable != "" {
		if _, err := attributes.LoadCarbonReferenceCSV(opts.CarbonTable); err != nil {
			return "cannot load carbon-table: " + err.Error(), false
		}
	}

	return "", true
}

func validateOptionsForCommandMerge(opts *pipeline.Options) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "input folder not found", false
	}
	if opts.MergeOptions.Output == "" {
		return "output folder must be given", false
	}
	return "", true
}

func applyLoggingFlags(silent bool, logTimestamp bool) {
	if silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !logTimestamp {
		tools.DisableLoggerTimestamp()
	}
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("canopy_inventory processes height-normalized lidar tiles into a per tree inventory and stand summary")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
