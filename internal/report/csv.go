package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeaders = []string{"vm_id", "name", "category", "confidence", "risk_score", "risk_level"}

// WriteCSV emits the fixed six-column summary to summary.csv in outDir.
func WriteCSV(outDir string, run *Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "summary.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return "", err
	}
	for _, r := range run.Records {
		row := []string{
			r.VMID,
			r.Name,
			r.Category,
			r.Confidence,
			strconv.Itoa(r.RiskScore),
			r.RiskLevel,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}
