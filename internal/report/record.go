// Package report defines the per-VM output record, the analysis run
// envelope, and the JSON/CSV/Markdown renderers consumed by operators.
package report

import (
	"time"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/scoring"
)

// Version of the output record contract.
const Version = "1.0"

// Record merges one VM's classification and scoring outputs.
type Record struct {
	VMID       string   `json:"vm_id"`
	Name       string   `json:"name"`
	PowerState string   `json:"power_state"`
	Category   string   `json:"category"`
	Confidence string   `json:"confidence"`
	RiskScore  int      `json:"risk_score"`
	RiskLevel  string   `json:"risk_level"`
	Reasons    []string `json:"reasons"`
	Trace      []string `json:"trace"`
	Tags       []string `json:"tags"`
	RuleName   string   `json:"rule_name"`
}

// Context captures run-level settings for reproducibility.
type Context struct {
	RulesPath  string `json:"rules_path,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	Suppressed int    `json:"suppressed,omitempty"`
}

// Run is one complete analysis: an ordered record list plus metadata.
// Record order always matches inventory input order.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	Version   string    `json:"version,omitempty"`
	Context   Context   `json:"context"`
	Records   []Record  `json:"records"`
}

// Assemble merges the independent engine outputs for one VM. The
// classification reason is prepended to the scoring trace to form the
// ordered reason list.
func Assemble(vm *inventory.VM, cls rules.Result, sc scoring.Result) Record {
	reasons := make([]string, 0, len(sc.Trace)+1)
	reasons = append(reasons, cls.Reason)
	reasons = append(reasons, sc.Trace...)
	return Record{
		VMID:       vm.VMID,
		Name:       vm.Name,
		PowerState: vm.PowerState,
		Category:   cls.Category,
		Confidence: cls.Confidence,
		RiskScore:  sc.Score,
		RiskLevel:  scoring.RiskLevel(sc.Score),
		Reasons:    reasons,
		Trace:      sc.Trace,
		Tags:       vm.Tags,
		RuleName:   cls.RuleName,
	}
}

// PoweredOffDays mirrors the inventory tag extraction for renderers that
// only see assembled records.
func (r *Record) PoweredOffDays() int {
	vm := inventory.VM{Tags: r.Tags}
	return vm.PoweredOffDays()
}
