package pkg

import (
	"errors"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/habitat-map/canopy_inventory/internal/attributes"
	"github.com/habitat-map/canopy_inventory/internal/chm"
	"github.com/habitat-map/canopy_inventory/internal/crown3d"
	"github.com/habitat-map/canopy_inventory/internal/data"
	"github.com/habitat-map/canopy_inventory/internal/detection"
	"github.com/habitat-map/canopy_inventory/internal/export"
	"github.com/habitat-map/canopy_inventory/internal/io"
	"github.com/habitat-map/canopy_inventory/internal/labeling"
	"github.com/habitat-map/canopy_inventory/internal/las"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/raster"
	"github.com/habitat-map/canopy_inventory/internal/stand"
	"github.com/habitat-map/canopy_inventory/pkg/algorithm_manager"
	"github.com/habitat-map/canopy_inventory/tools"
)

type IInventory interface {
	RunInventory(opts *pipeline.Options) error
}

// Inventory runs the tree inventory pipeline tile by tile: canopy height
// model, tree top detection, crown segmentation, point assignment, per tree
// attributes and 3D geometry, stand aggregation, exports.
type Inventory struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewInventory(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) *Inventory {
	return &Inventory{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// RunInventory processes the input tiles sequentially. Used by the detect
// command; batch wraps the same per tile pipeline in a worker pool.
func (inv *Inventory) RunInventory(opts *pipeline.Options) error {
	tilePaths := inv.tilesToProcess(opts)
	if len(tilePaths) == 0 {
		return errors.New("no input tiles to process")
	}

	for i, tilePath := range tilePaths {
		tools.LogOutput("Processing tile " + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(tilePaths)) + " " + filepath.Base(tilePath))
		unit := &io.WorkUnit{
			TilePath:   tilePath,
			Opts:       opts,
			OutputPath: path.Join(opts.DetectOptions.Output, fileNameWithoutExtension(tilePath)),
		}
		report, err := inv.ProcessTile(unit)
		if err != nil {
			return err
		}
		tools.LogOutput("> done processing", filepath.Base(tilePath),
			"trees:", report.TreesDetected, "warnings:", report.Warnings)
	}
	inv.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	return nil
}

// tilesToProcess returns the tile list. A CHM-only run has exactly one
// "tile": the raster itself.
func (inv *Inventory) tilesToProcess(opts *pipeline.Options) []string {
	if opts.Input == "" && opts.CHMPath != "" {
		return []string{opts.CHMPath}
	}
	return inv.fileFinder.GetLasFilesToProcess(opts)
}

// ProcessTile runs the full pipeline on one tile and writes its artifact
// folder. Satisfies io.TileProcessor so batch consumers can share it.
func (inv *Inventory) ProcessTile(unit *io.WorkUnit) (*data.RunReport, error) {
	opts := unit.Opts
	report := &data.RunReport{
		Tile:        unit.TilePath,
		StageMillis: map[string]int64{},
	}

	if err := tools.CreateDirectoryIfDoesNotExist(unit.OutputPath); err != nil {
		return nil, err
	}

	points, heightModel, err := inv.loadTile(unit, report)
	if err != nil {
		return nil, err
	}

	tops, labels, err := inv.delineateCrowns(heightModel, opts, report)
	if err != nil {
		return nil, err
	}
	report.TreesDetected = len(tops)

	records, groups, err := inv.extractTrees(points, tops, labels, opts, report)
	if err != nil {
		return nil, err
	}

	if !opts.Skip3D && len(groups) > 0 {
		inv.computeCrownGeometry(records, groups, opts, report)
	}

	summary, err := inv.aggregateStand(records, heightModel, report)
	if err != nil {
		return nil, err
	}
	report.Stand = summary
	report.Warnings = report.TreesExcluded + report.GeometryFailures + report.PointsOutsideExtent

	if err := inv.exportArtifacts(unit, heightModel, labels, records, points, report); err != nil {
		return nil, err
	}

	return report, nil
}

// loadTile reads the point cloud and derives the canopy height model, or
// reads a pre-computed CHM when one was supplied. points is nil in CHM-only
// mode.
func (inv *Inventory) loadTile(unit *io.WorkUnit, report *data.RunReport) ([]*data.Point, *raster.Grid, error) {
	opts := unit.Opts

	var points []*data.Point
	if opts.Input != "" && isLasFile(unit.TilePath) {
		start := time.Now()
		tools.LogOutput("> reading data from las file...", filepath.Base(unit.TilePath))
		var err error
		points, _, err = las.ReadTile(unit.TilePath, inv.algorithmManager.GetElevationCorrectionAlgorithm())
		if err != nil {
			return nil, nil, err
		}
		report.StageMillis["read_las"] = time.Since(start).Milliseconds()
	}

	start := time.Now()
	var heightModel *raster.Grid
	var err error
	if opts.CHMPath != "" {
		tools.LogOutput("> reading canopy height model...", filepath.Base(opts.CHMPath))
		heightModel, err = raster.ReadEsriAscii(opts.CHMPath)
	} else {
		tools.LogOutput("> rasterizing canopy height model...")
		heightModel, err = chm.NewBuilder(opts.CellSize, opts.Smooth).Build(points)
	}
	if err != nil {
		return nil, nil, err
	}
	report.StageMillis["chm"] = time.Since(start).Milliseconds()

	return points, heightModel, nil
}

func (inv *Inventory) delineateCrowns(heightModel *raster.Grid, opts *pipeline.Options, report *data.RunReport) ([]*data.TreeTop, *raster.LabelGrid, error) {
	start := time.Now()
	tools.LogOutput("> detecting tree tops...")
	detector := detection.NewDetector(inv.algorithmManager.GetWindowAlgorithm(), opts.HMin)
	tops, err := detector.Detect(heightModel)
	if err != nil {
		return nil, nil, err
	}
	report.StageMillis["detect"] = time.Since(start).Milliseconds()

	start = time.Now()
	tools.LogOutput("> segmenting crowns...")
	labels, err := inv.algorithmManager.GetSegmenterAlgorithm().Segment(heightModel, tops)
	if err != nil {
		return nil, nil, err
	}
	report.StageMillis["segment"] = time.Since(start).Milliseconds()

	return tops, labels, nil
}

func (inv *Inventory) extractTrees(points []*data.Point, tops []*data.TreeTop, labels *raster.LabelGrid, opts *pipeline.Options, report *data.RunReport) ([]*data.TreeRecord, map[int32][]*data.Point, error) {
	start := time.Now()

	// an unknown region resolves to generic; the substitution is visible
	// on every record via DBHFallback
	region, _ := attributes.ParseRegion(opts.Region)

	if points == nil {
		// CHM-only mode: raster derived records, no per point attributes
		records := recordsFromTops(tops, region)
		report.StageMillis["attributes"] = time.Since(start).Milliseconds()
		return records, nil, nil
	}

	tools.LogOutput("> assigning points to crowns...")
	outside, err := labeling.AssignPoints(points, labels)
	if err != nil {
		return nil, nil, err
	}
	report.PointsOutsideExtent = outside

	tools.LogOutput("> extracting tree attributes...")
	groups := labeling.GroupByTree(points)
	extractor := attributes.NewExtractor(region, inv.algorithmManager.GetCarbonReferenceAlgorithm(), opts.MinPoints)
	records, excluded := extractor.Extract(groups, tops)
	report.TreesExcluded = excluded
	report.StageMillis["attributes"] = time.Since(start).Milliseconds()

	return records, groups, nil
}

func (inv *Inventory) computeCrownGeometry(records []*data.TreeRecord, groups map[int32][]*data.Point, opts *pipeline.Options, report *data.RunReport) {
	start := time.Now()
	tools.LogOutput("> computing 3D crown geometry...")

	geomOpts := crown3d.DefaultOpts()
	geomOpts.Alpha = opts.Alpha
	if opts.VoxelSize > 0 {
		geomOpts.VoxelSize = opts.VoxelSize
	}
	if opts.ProfileLayers > 0 {
		geomOpts.Layers = opts.ProfileLayers
	}

	byID := make(map[int32]*data.TreeRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	for _, result := range crown3d.ComputeBatch(groups, geomOpts, opts.Workers) {
		record, ok := byID[result.TreeID]
		if !ok {
			continue // excluded below min-points
		}
		record.Metrics = result.Metrics
		if result.Failed() {
			report.GeometryFailures++
		}
	}
	report.StageMillis["crown3d"] = time.Since(start).Milliseconds()
}

func (inv *Inventory) aggregateStand(records []*data.TreeRecord, heightModel *raster.Grid, report *data.RunReport) (*data.StandSummary, error) {
	start := time.Now()
	areaHa := float64(heightModel.Cols) * float64(heightModel.Rows) * heightModel.CellSize * heightModel.CellSize / 10000.0
	summary, err := stand.Aggregate(records, areaHa, stand.DefaultOldGrowthThresholds())
	if err != nil {
		return nil, err
	}
	report.StageMillis["stand"] = time.Since(start).Milliseconds()
	return summary, nil
}

func (inv *Inventory) exportArtifacts(unit *io.WorkUnit, heightModel *raster.Grid, labels *raster.LabelGrid, records []*data.TreeRecord, points []*data.Point, report *data.RunReport) error {
	opts := unit.Opts
	start := time.Now()
	tools.LogOutput("> exporting data...")

	if err := raster.WriteEsriAscii(path.Join(unit.OutputPath, "chm.asc"), heightModel); err != nil {
		return err
	}
	if err := raster.WriteLabelsEsriAscii(path.Join(unit.OutputPath, "crowns.asc"), labels); err != nil {
		return err
	}
	if err := export.WriteTreeTableCSV(path.Join(unit.OutputPath, "trees.csv"), records); err != nil {
		return err
	}
	if err := export.WriteProfilesCSV(path.Join(unit.OutputPath, "profiles.csv"), records); err != nil {
		return err
	}
	converter := inv.algorithmManager.GetCoordinateConverterAlgorithm()
	if err := export.WriteTreeGeoJSON(path.Join(unit.OutputPath, "trees.geojson"), records, converter, opts.Srid); err != nil {
		return err
	}
	if err := export.WriteTreeShapefile(path.Join(unit.OutputPath, "trees.shp"), records); err != nil {
		return err
	}
	if opts.WriteLabeledLas && points != nil {
		if err := las.WriteLabeledTile(path.Join(unit.OutputPath, "labeled.las"), points); err != nil {
			return err
		}
	}
	report.StageMillis["export"] = time.Since(start).Milliseconds()

	return export.WriteRunReport(path.Join(unit.OutputPath, "report.json"), report)
}

// recordsFromTops builds raster-only tree records for CHM-only runs. Point
// derived attributes stay NaN.
func recordsFromTops(tops []*data.TreeTop, region attributes.Region) []*data.TreeRecord {
	nan := math.NaN()
	coeff, fallback := attributes.CoefficientsFor(region)
	records := make([]*data.TreeRecord, 0, len(tops))
	for _, top := range tops {
		records = append(records, &data.TreeRecord{
			ID:              top.ID,
			X:               top.X,
			Y:               top.Y,
			XApex:           top.X,
			YApex:           top.Y,
			Height:          top.Height,
			HeightMean:      nan,
			CrownBaseHeight: nan,
			CrownDepth:      nan,
			CrownDiameterX:  nan,
			CrownDiameterY:  nan,
			CrownDiameter:   nan,
			CrownShape:      "",
			ApexOffset:      nan,
			CrownAsymmetry:  nan,
			DBHCm:           coeff.A * math.Pow(top.Height, coeff.B),
			DBHFallback:     fallback,
			CarbonTonnes:    nan,
		})
	}
	return records
}

func isLasFile(filePath string) bool {
	return filepath.Ext(filePath) == ".las" || filepath.Ext(filePath) == ".LAS"
}

func fileNameWithoutExtension(filePath string) string {
	nameWext := filepath.Base(filePath)
	extension := filepath.Ext(nameWext)
	return nameWext[0 : len(nameWext)-len(extension)]
}
