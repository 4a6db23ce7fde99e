package storage

import "time"

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	Version   string    `json:"version,omitempty"`
	Records   int       `json:"records"`
}

// RecordRow is the normalized per-VM row used by filtered listings.
type RecordRow struct {
	VMID       string `json:"vm_id"`
	Name       string `json:"name"`
	PowerState string `json:"power_state"`
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	RiskScore  int    `json:"risk_score"`
	RiskLevel  string `json:"risk_level"`
	RuleName   string `json:"rule_name"`
	Reason     string `json:"reason"`
}
