package inventory

import (
	"strconv"
	"strings"
)

const SchemaVersion = 1

// Power states reported by the collector.
const (
	PoweredOn  = "poweredOn"
	PoweredOff = "poweredOff"
)

// Guest tooling states.
const (
	ToolsRunning    = "running"
	ToolsNotRunning = "notRunning"
	ToolsUnknown    = "unknown"
)

// VM is one inventory record. Constructed once per batch and treated as
// immutable by every consumer.
type VM struct {
	SchemaVersion      int      `json:"schema_version"`
	VMID               string   `json:"vm_id"`
	Name               string   `json:"name"`
	PowerState         string   `json:"power_state"`
	CPU                float64  `json:"cpu"`
	MemoryMB           float64  `json:"memory_mb"`
	DiskGB             float64  `json:"disk_gb"`
	GuestOS            string   `json:"guest_os"`
	ToolsStatus        string   `json:"tools_status"`
	NICs               int      `json:"nics"`
	SnapshotCount      int      `json:"snapshot_count"`
	MaxSnapshotAgeDays float64  `json:"max_snapshot_age_days"`
	AvgCPUUsagePct     float64  `json:"avg_cpu_usage_pct"`
	AvgMemUsagePct     float64  `json:"avg_mem_usage_pct"`
	UptimeDays         float64  `json:"uptime_days"`
	Tags               []string `json:"tags"`
}

const poweredOffTagPrefix = "powered_off_days="

// PoweredOffDays extracts the powered_off_days=<int> tag value.
// Absent or malformed tags yield 0, which no threshold ever matches.
func (v *VM) PoweredOffDays() int {
	for _, t := range v.Tags {
		if strings.HasPrefix(t, poweredOffTagPrefix) {
			n, err := strconv.Atoi(t[len(poweredOffTagPrefix):])
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}
