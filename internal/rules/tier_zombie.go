package rules

import (
	"fmt"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const RuleZombieDetection = "zombie-detection"

// Decommission threshold in days for powered-off VMs.
const zombieThresholdDays = 60

// evalZombie retires VMs that have been powered off past the
// decommission threshold. Only the power state plus a well-formed
// powered_off_days tag can trigger it.
func evalZombie(vm *inventory.VM) (Result, bool) {
	if vm.PowerState != inventory.PoweredOff {
		return Result{}, false
	}
	days := vm.PoweredOffDays()
	if days <= zombieThresholdDays {
		return Result{}, false
	}
	return Result{
		Category:   CategoryRetire,
		Confidence: ConfidenceHigh,
		RuleName:   RuleZombieDetection,
		Reason:     fmt.Sprintf("Powered off for %d days; requires decommission", days),
	}, true
}
