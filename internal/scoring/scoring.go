// Package scoring computes the additive migration risk score for one VM
// record. Signals are independent and purely additive; evaluation order
// only fixes the trace ordering.
package scoring

import (
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

// Signal weights. The raw sum is 105, so the cap at 100 is reachable.
const (
	weightSnapshots   = 20
	weightSnapshotAge = 15
	weightLegacyOS    = 25
	weightTools       = 10
	weightNICs        = 10
	weightUsage       = 15
	weightUptime      = 10
)

var legacyTokens = []string{"2008", "2003", "rhel 6", "centos 6"}

// Result holds the clamped risk score and the ordered signal trace.
type Result struct {
	Score int      `json:"score"`
	Trace []string `json:"trace"`
}

// Score evaluates the seven weighted signals in fixed order and returns
// the clamped 0-100 total with one trace entry per fired signal.
func Score(vm *inventory.VM) Result {
	score := 0
	trace := []string{}

	if vm.SnapshotCount > 5 {
		score += weightSnapshots
		trace = append(trace, "snapshot_count>5:+20")
	}
	if vm.MaxSnapshotAgeDays > 30 {
		score += weightSnapshotAge
		trace = append(trace, "max_snapshot_age_days>30:+15")
	}
	guest := strings.ToLower(vm.GuestOS)
	for _, tok := range legacyTokens {
		if strings.Contains(guest, tok) {
			score += weightLegacyOS
			trace = append(trace, "guest_os_legacy:+25")
			break
		}
	}
	if vm.ToolsStatus != inventory.ToolsRunning {
		score += weightTools
		trace = append(trace, "tools_status_not_running:+10")
	}
	if vm.NICs > 3 {
		score += weightNICs
		trace = append(trace, "nics>3:+10")
	}
	if vm.AvgCPUUsagePct > 80 || vm.AvgMemUsagePct > 80 {
		score += weightUsage
		trace = append(trace, "high_avg_usage:+15")
	}
	if vm.UptimeDays > 365 {
		score += weightUptime
		trace = append(trace, "uptime_days>365:+10")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return Result{Score: score, Trace: trace}
}

// Risk level bounds: 0-29 Low, 30-69 Medium, 70-100 High.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// RiskLevel maps a score to its triage tier.
func RiskLevel(score int) string {
	switch {
	case score <= 29:
		return LevelLow
	case score <= 69:
		return LevelMedium
	default:
		return LevelHigh
	}
}
