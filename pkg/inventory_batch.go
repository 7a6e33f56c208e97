package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/habitat-map/canopy_inventory/internal/io"
	"github.com/habitat-map/canopy_inventory/internal/pipeline"
	"github.com/habitat-map/canopy_inventory/pkg/algorithm_manager"
	"github.com/habitat-map/canopy_inventory/tools"
)

// InventoryBatch processes a folder of tiles on a worker pool: one producer
// walking the tile list, N consumers each running the full per tile
// pipeline.
type InventoryBatch struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewInventoryBatch(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) IInventory {
	return &InventoryBatch{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

func (batch *InventoryBatch) RunInventory(opts *pipeline.Options) error {
	tools.LogOutput("Preparing list of tiles to process...")

	tilePaths := batch.fileFinder.GetLasFilesToProcess(opts)
	if len(tilePaths) == 0 {
		return errors.New("no las tiles found in input folder")
	}
	for i, tilePath := range tilePaths {
		tools.LogOutput("tile", i+1, "/", len(tilePaths), tilePath)
	}

	numConsumers := opts.Workers
	if numConsumers <= 0 {
		numConsumers = runtime.NumCPU()
	}

	workChannel := make(chan *io.WorkUnit, numConsumers*5)
	resultChannel := make(chan *io.TileResult, len(tilePaths))
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := io.NewStandardProducer(opts.DetectOptions.Output, tilePaths, opts)
	go producer.Produce(workChannel, &waitGroup)

	processor := NewInventory(batch.fileFinder, batch.algorithmManager)
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(processor, opts.FailFast)
		go consumer.Consume(workChannel, resultChannel, errorChannel, &waitGroup)
	}

	waitGroup.Wait()
	close(resultChannel)
	close(errorChannel)

	batch.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	for err := range errorChannel {
		return fmt.Errorf("batch aborted: %w", err)
	}

	return batch.writeBatchReport(opts, tilePaths, resultChannel)
}

func (batch *InventoryBatch) writeBatchReport(opts *pipeline.Options, tilePaths []string, results chan *io.TileResult) error {
	processed, skipped, trees, warnings := 0, 0, 0, 0
	for result := range results {
		if result.Err != nil {
			skipped++
			continue
		}
		processed++
		trees += result.Report.TreesDetected
		warnings += result.Report.Warnings
	}

	summary := map[string]int{
		"tiles_found":     len(tilePaths),
		"tiles_processed": processed,
		"tiles_skipped":   skipped,
		"trees_detected":  trees,
		"warnings":        warnings,
	}
	tools.LogOutput("batch summary", tools.FmtJSONString(summary))

	return writeJSONFile(path.Join(opts.DetectOptions.Output, "batch_report.json"), summary)
}

func writeJSONFile(filePath string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, payload, 0666)
}
