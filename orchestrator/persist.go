package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// RunBundle is written per run when an outputs directory is configured,
// so that thresholds can later be calibrated against labelled transcripts.
type RunBundle struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Response    *Response `json:"response"`
	Report      *Report   `json:"report"`
}

func mkRunDir(outputsRoot, runID string) (string, error) {
	ts := time.Now().Format("20060102-150405")
	dir := filepath.Join(outputsRoot, "run_"+ts+"_"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func persist(outputsRoot string, resp *Response, report *Report) (string, error) {
	dir, err := mkRunDir(outputsRoot, resp.RunID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "transcript.json")
	bundle := RunBundle{
		RunID:       resp.RunID,
		GeneratedAt: time.Now(),
		Response:    resp,
		Report:      report,
	}
	if err := writeJSON(path, bundle); err != nil {
		return "", err
	}
	return path, nil
}
