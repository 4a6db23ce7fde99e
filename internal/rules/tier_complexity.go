package rules

import (
	"fmt"
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const RuleWorkloadComplexity = "workload-complexity"

// Complexity thresholds.
const (
	complexSnapshotCount = 5
	complexNICCount      = 3
	complexDiskGB        = 300
)

// evalComplexity flags stateful or operationally complex workloads for
// rehost. Each fragment fires independently; two or more raise the
// confidence to high.
func evalComplexity(vm *inventory.VM) (Result, bool) {
	var fragments []string

	if vm.SnapshotCount > complexSnapshotCount {
		fragments = append(fragments,
			fmt.Sprintf("Complex snapshot state (%d snapshots) requires stateful rehost", vm.SnapshotCount))
	}
	if vm.NICs > complexNICCount {
		fragments = append(fragments,
			fmt.Sprintf("Multi-NIC configuration (%d NICs) requires careful networking planning", vm.NICs))
	}
	if vm.ToolsStatus != inventory.ToolsRunning {
		status := vm.ToolsStatus
		if status == "" {
			status = inventory.ToolsUnknown
		}
		fragments = append(fragments,
			fmt.Sprintf("VMware Tools %s indicates operational complexity", status))
	}
	if vm.DiskGB > complexDiskGB {
		fragments = append(fragments,
			fmt.Sprintf("Large disk footprint (%g GB) suggests stateful workload", vm.DiskGB))
	}

	if len(fragments) == 0 {
		return Result{}, false
	}
	conf := ConfidenceMedium
	if len(fragments) > 1 {
		conf = ConfidenceHigh
	}
	return Result{
		Category:   CategoryRehost,
		Confidence: conf,
		RuleName:   RuleWorkloadComplexity,
		Reason:     strings.Join(fragments, "; "),
	}, true
}
