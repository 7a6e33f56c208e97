package export

import (
	"encoding/json"
	"os"

	"github.com/habitat-map/canopy_inventory/internal/data"
)

// WriteRunReport persists the run report so warning counts survive the
// process (silent data loss is not acceptable at batch scale).
func WriteRunReport(filePath string, report *data.RunReport) error {
	payload, err := json.MarshalIndent(report, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, payload, 0666)
}

// ReadRunReport loads a per tile run report written by detect or batch.
func ReadRunReport(filePath string) (*data.RunReport, error) {
	payload, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var report data.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// WriteStandSummary persists a stand summary on its own, used by merge.
func WriteStandSummary(filePath string, summary *data.StandSummary) error {
	payload, err := json.MarshalIndent(summary, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, payload, 0666)
}

// ReadStandSummary loads a stand summary written by a previous run.
func ReadStandSummary(filePath string) (*data.StandSummary, error) {
	payload, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var summary data.StandSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
