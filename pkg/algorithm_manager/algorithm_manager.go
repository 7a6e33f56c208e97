package algorithm_manager

import (
	"github.com/golang/glog"

	"github.com/habitat-map/canopy_inventory/internal/attributes"
	"github.com/habitat-map/canopy_inventory/internal/converters"
	"github.com/habitat-map/canopy_inventory/internal/converters/elevation/offset_elevation_corrector"
	"github.com/habitat-map/canopy_inventory/internal/converters/proj_coordinate_converter"
	"github.com/habitat-map/canopy_inventory/internal/detection"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/internal/segmentation"
)

// AlgorithmManager binds the tunable strategies of the pipeline to the
// options chosen on the command line.
type AlgorithmManager interface {
	GetWindowAlgorithm() detection.WindowFunc
	GetSegmenterAlgorithm() segmentation.Segmenter
	GetCarbonReferenceAlgorithm() *attributes.CarbonReference
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
}

type StandardAlgorithmManager struct {
	window              detection.WindowFunc
	segmenter           segmentation.Segmenter
	carbonReference     *attributes.CarbonReference
	elevationCorrector  converters.ElevationCorrector
	coordinateConverter converters.CoordinateConverter
}

// NewAlgorithmManager resolves all strategies upfront. Options must have
// been validated in main; an unresolvable strategy at this point is a
// programming error and aborts.
func NewAlgorithmManager(opts *pipeline.Options) AlgorithmManager {
	window, err := detection.ParseWindowSpec(opts.WindowSpec)
	if err != nil {
		glog.Fatal(err)
	}

	segmenter, err := segmentation.NewSegmenter(opts.Algorithm, opts.SegParams)
	if err != nil {
		glog.Fatal(err)
	}

	carbonReference := attributes.NewCarbonReference()
	if opts.CarbonTable != "" {
		carbonReference, err = attributes.LoadCarbonReferenceCSV(opts.CarbonTable)
		if err != nil {
			glog.Fatal(err)
		}
	}

	coordinateConverter, err := proj_coordinate_converter.NewProjCoordinateConverter()
	if err != nil {
		glog.Fatal(err)
	}

	return &StandardAlgorithmManager{
		window:              window,
		segmenter:           segmenter,
		carbonReference:     carbonReference,
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
		coordinateConverter: coordinateConverter,
	}
}

func (am *StandardAlgorithmManager) GetWindowAlgorithm() detection.WindowFunc {
	return am.window
}

func (am *StandardAlgorithmManager) GetSegmenterAlgorithm() segmentation.Segmenter {
	return am.segmenter
}

func (am *StandardAlgorithmManager) GetCarbonReferenceAlgorithm() *attributes.CarbonReference {
	return am.carbonReference
}

func (am *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return am.elevationCorrector
}

func (am *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return am.coordinateConverter
}
