package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

type diffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary diffSummary   `json:"summary"`
	New     []diffRecord  `json:"new"`
	Removed []diffRecord  `json:"removed"`
	Changed []diffChanged `json:"changed"`
}

type diffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffRecord struct {
	VMID      string `json:"vm_id"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level,omitempty"`
	RuleName  string `json:"rule_name,omitempty"`
}

type diffChanged struct {
	VMID    string     `json:"vm_id"`
	Base    diffRecord `json:"base"`
	Head    diffRecord `json:"head"`
	Changed []string   `json:"fields_changed"`
}

// WriteDiffJSON compares two stored runs keyed by vm_id and writes the
// additions, removals, and per-field changes between them.
func WriteDiffJSON(outDir string, base, head *Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")

	bm := map[string]Record{}
	hm := map[string]Record{}
	for _, r := range base.Records {
		bm[r.VMID] = r
	}
	for _, r := range head.Records {
		hm[r.VMID] = r
	}

	var added, removed []diffRecord
	var changed []diffChanged

	for id, hr := range hm {
		br, ok := bm[id]
		if !ok {
			added = append(added, asDiff(hr))
			continue
		}
		var fields []string
		if br.Category != hr.Category {
			fields = append(fields, "category")
		}
		if br.Confidence != hr.Confidence {
			fields = append(fields, "confidence")
		}
		if br.RiskScore != hr.RiskScore {
			fields = append(fields, "risk_score")
		}
		if br.RuleName != hr.RuleName {
			fields = append(fields, "rule_name")
		}
		if len(fields) > 0 {
			changed = append(changed, diffChanged{
				VMID:    id,
				Base:    asDiff(br),
				Head:    asDiff(hr),
				Changed: fields,
			})
		}
	}
	for id, br := range bm {
		if _, ok := hm[id]; !ok {
			removed = append(removed, asDiff(br))
		}
	}

	sort.Slice(added, func(i, j int) bool { return added[i].VMID < added[j].VMID })
	sort.Slice(removed, func(i, j int) bool { return removed[i].VMID < removed[j].VMID })
	sort.Slice(changed, func(i, j int) bool { return changed[i].VMID < changed[j].VMID })

	payload := diffPayload{
		BaseID: base.ID,
		HeadID: head.ID,
		Summary: diffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func asDiff(r Record) diffRecord {
	return diffRecord{
		VMID:      r.VMID,
		Name:      r.Name,
		Category:  r.Category,
		RiskScore: r.RiskScore,
		RiskLevel: r.RiskLevel,
		RuleName:  r.RuleName,
	}
}
