package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/scoring"
)

// WriteMarkdown renders the operator-facing summary to report.md in
// outDir: totals, histograms, top-10 risk ranking, the zombie table, and
// the fixed cascade description.
func WriteMarkdown(outDir string, run *Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "report.md")

	records := run.Records
	levelCounts := map[string]int{}
	catCounts := map[string]int{}
	for _, r := range records {
		levelCounts[r.RiskLevel]++
		catCounts[r.Category]++
	}

	// Top 10 by score, stable so ties keep input order.
	top := make([]Record, len(records))
	copy(top, records)
	sort.SliceStable(top, func(i, j int) bool { return top[i].RiskScore > top[j].RiskScore })
	if len(top) > 10 {
		top = top[:10]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# VMware Exit Intelligence Agent — Analysis\n\n")
	fmt.Fprintf(&b, "- Total VMs analyzed: **%d**\n\n", len(records))

	b.WriteString("## Risk Level Breakdown\n\n")
	for _, level := range []string{scoring.LevelHigh, scoring.LevelMedium, scoring.LevelLow} {
		fmt.Fprintf(&b, "- **%s**: %d\n", level, levelCounts[level])
	}

	b.WriteString("\n## Migration Category Breakdown\n\n")
	cats := make([]string, 0, len(catCounts))
	for c := range catCounts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(&b, "- **%s**: %d\n", c, catCounts[c])
	}

	b.WriteString("\n## Top 10 Highest-Risk & Action Items\n\n")
	b.WriteString("| vm_id | name | risk | level | category | decision_reason |\n")
	b.WriteString("|---|---|---:|---|---|---|\n")
	for _, r := range top {
		reason := "Unknown"
		if len(r.Reasons) > 0 {
			reason = r.Reasons[0]
		}
		if len(reason) > 60 {
			reason = reason[:57] + "..."
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			r.VMID, r.Name, r.RiskScore, r.RiskLevel, r.Category, reason)
	}

	b.WriteString("\n## Retire (Zombie/Decommission) VMs\n\n")
	type zombie struct {
		rec  Record
		days int
	}
	var zombies []zombie
	for _, r := range records {
		if r.PowerState == inventory.PoweredOff && r.Category == rules.CategoryRetire {
			if days := r.PoweredOffDays(); days > 0 {
				zombies = append(zombies, zombie{rec: r, days: days})
			}
		}
	}
	if len(zombies) > 0 {
		b.WriteString("| vm_id | name | powered_off_days | category | risk_score | action |\n")
		b.WriteString("|---|---|---:|---|---:|---|\n")
		for _, z := range zombies {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %d | Decommission |\n",
				z.rec.VMID, z.rec.Name, z.days, z.rec.Category, z.rec.RiskScore)
		}
	} else {
		b.WriteString("No zombie VMs detected (powered_off > 60 days).\n")
	}

	b.WriteString("\n## Rules Applied\n\n")
	b.WriteString("This analysis enforces these rules:\n\n")
	b.WriteString("1. **Zombie Detection**: VM poweredOff > 60 days → Retire\n")
	b.WriteString("2. **Legacy OS**: Windows 2008/2003, RHEL 6, CentOS 6 → Keep (on-premises)\n")
	b.WriteString("3. **Complexity**: Too many snapshots, multi-NIC, tools issues, large disk → Rehost\n")
	b.WriteString("4. **Refactor Candidate**: Linux + low risk + single NIC + small disk (very conservative)\n")
	b.WriteString("5. **Default**: Keep on-premises (conservative default)\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
