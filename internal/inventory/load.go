package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Diagnostics carries non-fatal observations from batch ingestion.
type Diagnostics struct {
	Warnings []string
}

// looseFloat tolerates numbers that arrive as JSON strings. Unparseable
// values decode to zero so downstream comparisons fail open.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

type looseInt int

func (i *looseInt) UnmarshalJSON(b []byte) error {
	var f looseFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = looseInt(f)
	return nil
}

// vmWire is the ingestion shape before trimming and validation.
type vmWire struct {
	SchemaVersion      looseInt   `json:"schema_version"`
	VMID               string     `json:"vm_id"`
	Name               string     `json:"name"`
	PowerState         string     `json:"power_state"`
	CPU                looseFloat `json:"cpu"`
	MemoryMB           looseFloat `json:"memory_mb"`
	DiskGB             looseFloat `json:"disk_gb"`
	GuestOS            string     `json:"guest_os"`
	ToolsStatus        string     `json:"tools_status"`
	NICs               looseInt   `json:"nics"`
	SnapshotCount      looseInt   `json:"snapshot_count"`
	MaxSnapshotAgeDays looseFloat `json:"max_snapshot_age_days"`
	AvgCPUUsagePct     looseFloat `json:"avg_cpu_usage_pct"`
	AvgMemUsagePct     looseFloat `json:"avg_mem_usage_pct"`
	UptimeDays         looseFloat `json:"uptime_days"`
	Tags               []string   `json:"tags"`
}

// Load reads an inventory file containing a JSON array of VM objects.
// A non-array payload is fatal; individual records are validated and
// whitespace-trimmed.
func Load(path string) ([]VM, Diagnostics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(b)
}

// Parse validates a raw inventory payload.
func Parse(b []byte) ([]VM, Diagnostics, error) {
	var wires []vmWire
	if err := json.Unmarshal(b, &wires); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("inventory must be a JSON array of VM objects: %w", err)
	}

	diags := Diagnostics{}
	vms := make([]VM, 0, len(wires))
	for i, w := range wires {
		vm, err := w.validate()
		if err != nil {
			return nil, diags, fmt.Errorf("record %d: %w", i, err)
		}
		if vm.SchemaVersion != SchemaVersion {
			diags.Warnings = append(diags.Warnings,
				fmt.Sprintf("record %d (%s): schema_version %d, expected %d", i, vm.VMID, vm.SchemaVersion, SchemaVersion))
		}
		vms = append(vms, vm)
	}
	if len(vms) == 0 {
		diags.Warnings = append(diags.Warnings, "inventory contains no VM records")
	}
	return vms, diags, nil
}

func (w vmWire) validate() (VM, error) {
	vm := VM{
		SchemaVersion:      int(w.SchemaVersion),
		VMID:               strings.TrimSpace(w.VMID),
		Name:               strings.TrimSpace(w.Name),
		PowerState:         w.PowerState,
		CPU:                clampNonNeg(float64(w.CPU)),
		MemoryMB:           clampNonNeg(float64(w.MemoryMB)),
		DiskGB:             clampNonNeg(float64(w.DiskGB)),
		GuestOS:            w.GuestOS,
		ToolsStatus:        w.ToolsStatus,
		NICs:               int(clampNonNeg(float64(w.NICs))),
		SnapshotCount:      int(clampNonNeg(float64(w.SnapshotCount))),
		MaxSnapshotAgeDays: clampNonNeg(float64(w.MaxSnapshotAgeDays)),
		AvgCPUUsagePct:     float64(w.AvgCPUUsagePct),
		AvgMemUsagePct:     float64(w.AvgMemUsagePct),
		UptimeDays:         clampNonNeg(float64(w.UptimeDays)),
		Tags:               w.Tags,
	}
	if vm.Tags == nil {
		vm.Tags = []string{}
	}
	if vm.VMID == "" {
		return VM{}, fmt.Errorf("vm_id is required")
	}
	switch vm.PowerState {
	case PoweredOn, PoweredOff:
	default:
		return VM{}, fmt.Errorf("vm %q: power_state %q must be %q or %q", vm.VMID, vm.PowerState, PoweredOn, PoweredOff)
	}
	switch vm.ToolsStatus {
	case ToolsRunning, ToolsNotRunning, ToolsUnknown:
	case "":
		vm.ToolsStatus = ToolsUnknown
	default:
		return VM{}, fmt.Errorf("vm %q: tools_status %q must be one of running, notRunning, unknown", vm.VMID, vm.ToolsStatus)
	}
	return vm, nil
}

func clampNonNeg(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
