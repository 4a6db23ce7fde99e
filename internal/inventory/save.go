package inventory

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Save writes an inventory batch as the JSON array consumed by Load.
func Save(path string, vms []VM) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(vms)
}
