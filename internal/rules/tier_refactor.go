package rules

import (
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const RuleConservativeRefactor = "conservative-refactor"

var linuxTokens = []string{"rhel", "centos", "ubuntu", "debian"}

// Refactor eligibility limits.
const (
	refactorMaxNICs       = 1
	refactorMaxDiskGB     = 100
	refactorUsageLimitPct = 70
	refactorUptimeDays    = 365
)

// evalRefactor nominates small, quiet Linux guests for containerization.
// Any risk signal at all disqualifies the tier.
func evalRefactor(vm *inventory.VM) (Result, bool) {
	g := strings.ToLower(vm.GuestOS)
	isLinux := strings.Contains(g, "linux")
	for _, tok := range linuxTokens {
		if strings.Contains(g, tok) {
			isLinux = true
			break
		}
	}
	if !isLinux || vm.NICs > refactorMaxNICs || vm.DiskGB > refactorMaxDiskGB {
		return Result{}, false
	}

	riskSignals := 0
	if vm.SnapshotCount > 0 {
		riskSignals++
	}
	if vm.AvgCPUUsagePct > refactorUsageLimitPct {
		riskSignals++
	}
	if vm.AvgMemUsagePct > refactorUsageLimitPct {
		riskSignals++
	}
	if vm.UptimeDays > refactorUptimeDays {
		riskSignals++
	}
	if riskSignals != 0 {
		return Result{}, false
	}

	return Result{
		Category:   CategoryRefactorCandidate,
		Confidence: ConfidenceMedium,
		RuleName:   RuleConservativeRefactor,
		Reason:     "Linux; low risk profile; single NIC; small disk; eligible for containerization",
	}, true
}
