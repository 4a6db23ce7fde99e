package analyzer

import (
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/report"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/storage"
)

// ApplySuppressions filters out records matching any active suppression.
// Returns (kept, suppressedCount). Suppression is a reporting concern;
// classification and scoring outputs are never altered.
func ApplySuppressions(in []report.Record, sups []storage.Suppression) ([]report.Record, int) {
	if len(sups) == 0 || len(in) == 0 {
		return in, 0
	}
	out := make([]report.Record, 0, len(in))
	suppressed := 0
nextRecord:
	for _, r := range in {
		for _, s := range sups {
			if s.VMID != "" && !eqCI(r.VMID, s.VMID) {
				continue
			}
			if s.Category != "" && !eqCI(r.Category, s.Category) {
				continue
			}
			if s.ReasonSub != "" && !reasonsContain(r.Reasons, s.ReasonSub) {
				continue
			}
			suppressed++
			continue nextRecord
		}
		out = append(out, r)
	}
	return out, suppressed
}

func reasonsContain(reasons []string, sub string) bool {
	needle := strings.ToLower(sub)
	for _, r := range reasons {
		if strings.Contains(strings.ToLower(r), needle) {
			return true
		}
	}
	return false
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
