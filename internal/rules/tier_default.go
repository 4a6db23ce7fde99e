package rules

import (
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const RuleDefaultConservative = "default-conservative"

// evalDefault matches every record that reached the bottom of the cascade.
func evalDefault(_ *inventory.VM) (Result, bool) {
	return Result{
		Category:   CategoryKeep,
		Confidence: ConfidenceMedium,
		RuleName:   RuleDefaultConservative,
		Reason:     "Conservative default: keep on-premises",
	}, true
}
