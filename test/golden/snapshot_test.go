package golden

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/analyzer"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/report"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
)

var update = flag.Bool("update", false, "update golden snapshot")

const goldenFile = "expected.json"

const sampleCatalog = `
- name: zombie-detection
  category: retire
  confidence: high
- name: legacy-os-detection
  category: keep
  confidence: high
- name: workload-complexity
  category: rehost
  confidence: medium
- name: conservative-refactor
  category: refactor_candidate
  confidence: medium
- name: default-conservative
  category: keep
  confidence: medium
`

const sampleInventory = `[
  {
    "schema_version": 1,
    "vm_id": "vm-0001",
    "name": "ad-dc-01",
    "power_state": "poweredOn",
    "cpu": 4,
    "memory_mb": 8192,
    "disk_gb": 120,
    "guest_os": "Microsoft Windows Server 2008 R2 (64-bit)",
    "tools_status": "running",
    "nics": 2,
    "snapshot_count": 0,
    "max_snapshot_age_days": 0,
    "avg_cpu_usage_pct": 20,
    "avg_mem_usage_pct": 45,
    "uptime_days": 400,
    "tags": []
  },
  {
    "schema_version": 1,
    "vm_id": "vm-0002",
    "name": "old-batch-07",
    "power_state": "poweredOff",
    "cpu": 2,
    "memory_mb": 4096,
    "disk_gb": 40,
    "guest_os": "Ubuntu Linux (64-bit)",
    "tools_status": "unknown",
    "nics": 1,
    "snapshot_count": 0,
    "max_snapshot_age_days": 0,
    "avg_cpu_usage_pct": 0,
    "avg_mem_usage_pct": 0,
    "uptime_days": 0,
    "tags": ["powered_off_days=120"]
  },
  {
    "schema_version": 1,
    "vm_id": "vm-0003",
    "name": "erp-db-01",
    "power_state": "poweredOn",
    "cpu": 16,
    "memory_mb": 65536,
    "disk_gb": 500,
    "guest_os": "Microsoft Windows Server 2019 (64-bit)",
    "tools_status": "notRunning",
    "nics": 4,
    "snapshot_count": 8,
    "max_snapshot_age_days": 90,
    "avg_cpu_usage_pct": 85,
    "avg_mem_usage_pct": 60,
    "uptime_days": 500,
    "tags": []
  },
  {
    "schema_version": 1,
    "vm_id": "vm-0004",
    "name": "web-app-03",
    "power_state": "poweredOn",
    "cpu": 2,
    "memory_mb": 4096,
    "disk_gb": 40,
    "guest_os": "Ubuntu Linux 22.04 (64-bit)",
    "tools_status": "running",
    "nics": 1,
    "snapshot_count": 0,
    "max_snapshot_age_days": 0,
    "avg_cpu_usage_pct": 25,
    "avg_mem_usage_pct": 30,
    "uptime_days": 120,
    "tags": []
  },
  {
    "schema_version": 1,
    "vm_id": "vm-0005",
    "name": "metrics-01",
    "power_state": "poweredOn",
    "cpu": 2,
    "memory_mb": 8192,
    "disk_gb": 60,
    "guest_os": "Fedora 38 (64-bit)",
    "tools_status": "running",
    "nics": 1,
    "snapshot_count": 1,
    "max_snapshot_age_days": 10,
    "avg_cpu_usage_pct": 40,
    "avg_mem_usage_pct": 50,
    "uptime_days": 200,
    "tags": []
  }
]`

type runLite struct {
	ID        string          `json:"id"`
	StartedAt string          `json:"started_at"`
	Source    string          `json:"source,omitempty"`
	Version   string          `json:"version,omitempty"`
	Records   []report.Record `json:"records"`
}

func TestGolden_SampleInventorySnapshot(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(catalogPath, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	engine, err := rules.NewEngine(catalogPath)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	vms, _, err := inventory.Parse([]byte(sampleInventory))
	if err != nil {
		t.Fatalf("parse inventory: %v", err)
	}

	// Single worker for a fully deterministic run.
	records, err := analyzer.Analyze(context.Background(), engine, vms, analyzer.Options{Workers: 1})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// Normalize volatile fields before snapshot.
	norm := runLite{
		ID:        "run-golden",
		StartedAt: "",
		Source:    "examples/sample_inventory.json",
		Version:   report.Version,
		Records:   records,
	}

	// SetEscapeHTML keeps ">" in trace entries literal.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(norm); err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	got := buf.Bytes()

	if *update {
		if err := os.WriteFile(goldenFile, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		t.Logf("updated %s", goldenFile)
		return
	}

	want, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("read golden (%s): %v\nRun with: go test ./test/golden -run TestGolden_SampleInventorySnapshot -args -update", goldenFile, err)
	}

	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want)) {
		tmp := filepath.Join(t.TempDir(), "got.json")
		_ = os.WriteFile(tmp, got, 0o644)
		t.Fatalf("golden mismatch.\n  golden: %s\n  actual: %s\nTip: update with\n  go test ./test/golden -run TestGolden_SampleInventorySnapshot -count=1 -args -update", goldenFile, tmp)
	}
}
