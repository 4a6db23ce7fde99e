package rules

import (
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const RuleLegacyOSDetection = "legacy-os-detection"

// legacyPatterns are checked in fixed order; the first substring match
// supplies the reason text.
var legacyPatterns = []struct {
	pattern string
	reason  string
}{
	{"2008", "Windows Server 2008 legacy OS requires on-premises infrastructure"},
	{"2003", "Windows Server 2003 legacy OS requires on-premises infrastructure"},
	{"rhel 6", "RHEL 6 legacy OS not supported in cloud targets"},
	{"centos 6", "CentOS 6 legacy OS not supported in cloud targets"},
}

func evalLegacyOS(vm *inventory.VM) (Result, bool) {
	g := strings.ToLower(vm.GuestOS)
	for _, lp := range legacyPatterns {
		if strings.Contains(g, lp.pattern) {
			return Result{
				Category:   CategoryKeep,
				Confidence: ConfidenceHigh,
				RuleName:   RuleLegacyOSDetection,
				Reason:     lp.reason,
			}, true
		}
	}
	return Result{}, false
}
