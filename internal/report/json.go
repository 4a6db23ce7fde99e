package report

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteJSON serializes the full ordered record list to
// classification.json in outDir.
func WriteJSON(outDir string, run *Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "classification.json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run.Records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRunJSON serializes the full run envelope, used by the report
// subcommand when re-rendering a stored run.
func WriteRunJSON(outDir string, run *Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return "", err
	}
	return path, nil
}
