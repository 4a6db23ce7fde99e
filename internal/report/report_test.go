package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/scoring"
)

func testRun() *Run {
	return &Run{
		ID:        "run-test",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:    "inventory.json",
		Version:   Version,
		Records: []Record{
			{
				VMID:       "vm-zombie",
				Name:       "old-batch",
				PowerState: inventory.PoweredOff,
				Category:   rules.CategoryRetire,
				Confidence: rules.ConfidenceHigh,
				RiskScore:  10,
				RiskLevel:  scoring.LevelLow,
				Reasons:    []string{"Powered off for 120 days; requires decommission", "tools_status_not_running:+10"},
				Trace:      []string{"tools_status_not_running:+10"},
				Tags:       []string{"powered_off_days=120"},
				RuleName:   rules.RuleZombieDetection,
			},
			{
				VMID:       "vm-legacy",
				Name:       "dc-01",
				PowerState: inventory.PoweredOn,
				Category:   rules.CategoryKeep,
				Confidence: rules.ConfidenceHigh,
				RiskScore:  75,
				RiskLevel:  scoring.LevelHigh,
				Reasons:    []string{"Windows Server 2008 legacy OS requires on-premises infrastructure"},
				Trace:      []string{"guest_os_legacy:+25"},
				Tags:       []string{},
				RuleName:   rules.RuleLegacyOSDetection,
			},
			{
				VMID:       "vm-quiet",
				Name:       "app-02",
				PowerState: inventory.PoweredOn,
				Category:   rules.CategoryKeep,
				Confidence: rules.ConfidenceMedium,
				RiskScore:  0,
				RiskLevel:  scoring.LevelLow,
				Reasons:    []string{"Conservative default: keep on-premises"},
				Trace:      []string{},
				Tags:       []string{},
				RuleName:   rules.RuleDefaultConservative,
			},
		},
	}
}

func TestAssemble_PrependsClassificationReason(t *testing.T) {
	vm := inventory.VM{
		VMID:       "vm-1",
		Name:       "web",
		PowerState: inventory.PoweredOn,
		Tags:       []string{"env=prod"},
	}
	cls := rules.Result{
		Category:   rules.CategoryRehost,
		Confidence: rules.ConfidenceHigh,
		RuleName:   rules.RuleWorkloadComplexity,
		Reason:     "Complex snapshot state (8 snapshots) requires stateful rehost",
	}
	sc := scoring.Result{
		Score: 35,
		Trace: []string{"snapshot_count>5:+20", "max_snapshot_age_days>30:+15"},
	}

	rec := Assemble(&vm, cls, sc)

	assert.Equal(t, []string{
		"Complex snapshot state (8 snapshots) requires stateful rehost",
		"snapshot_count>5:+20",
		"max_snapshot_age_days>30:+15",
	}, rec.Reasons)
	assert.Equal(t, sc.Trace, rec.Trace)
	assert.Equal(t, 35, rec.RiskScore)
	assert.Equal(t, scoring.LevelMedium, rec.RiskLevel)
	assert.Equal(t, rules.RuleWorkloadComplexity, rec.RuleName)
	assert.Equal(t, []string{"env=prod"}, rec.Tags)
}

func TestWriteJSON_RecordsOnlyInInputOrder(t *testing.T) {
	dir := t.TempDir()
	run := testRun()

	path, err := WriteJSON(dir, run)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []Record
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "vm-zombie", got[0].VMID)
	assert.Equal(t, "vm-legacy", got[1].VMID)
	assert.Equal(t, "vm-quiet", got[2].VMID)
}

func TestWriteRunJSON_Envelope(t *testing.T) {
	dir := t.TempDir()
	run := testRun()

	path, err := WriteRunJSON(dir, run)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "run-test.json"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Run
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Records, got.Records)
}

func TestWriteCSV_FixedColumns(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteCSV(dir, testRun())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"vm_id", "name", "category", "confidence", "risk_score", "risk_level"}, rows[0])
	assert.Equal(t, []string{"vm-zombie", "old-batch", "retire", "high", "10", "Low"}, rows[1])
	assert.Equal(t, []string{"vm-legacy", "dc-01", "keep", "high", "75", "High"}, rows[2])
}

func TestWriteMarkdown_Sections(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteMarkdown(dir, testRun())
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(b)

	assert.Contains(t, md, "Total VMs analyzed: **3**")
	assert.Contains(t, md, "- **High**: 1")
	assert.Contains(t, md, "- **Medium**: 0")
	assert.Contains(t, md, "- **Low**: 2")
	assert.Contains(t, md, "- **keep**: 2")
	assert.Contains(t, md, "- **retire**: 1")

	// Top-10 table sorts by score descending; the legacy VM leads.
	legacyIdx := strings.Index(md, "| vm-legacy |")
	zombieIdx := strings.Index(md, "| vm-zombie |")
	require.Greater(t, legacyIdx, 0)
	require.Greater(t, zombieIdx, 0)
	assert.Less(t, legacyIdx, zombieIdx)

	// Zombie table row with extracted day count and fixed action.
	assert.Contains(t, md, "| vm-zombie | old-batch | 120 | retire | 10 | Decommission |")
	assert.Contains(t, md, "## Rules Applied")
}

func TestWriteMarkdown_NoZombies(t *testing.T) {
	dir := t.TempDir()
	run := testRun()
	run.Records = run.Records[1:] // drop the retired VM

	path, err := WriteMarkdown(dir, run)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "No zombie VMs detected (powered_off > 60 days).")
}

func TestWriteMarkdown_TruncatesLongReasons(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 80)
	run := &Run{
		ID: "run-long",
		Records: []Record{{
			VMID:      "vm-1",
			RiskLevel: scoring.LevelLow,
			Category:  rules.CategoryKeep,
			Reasons:   []string{long},
		}},
	}

	path, err := WriteMarkdown(dir, run)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), strings.Repeat("x", 57)+"...")
	assert.NotContains(t, string(b), long)
}

func TestWriteDiffJSON(t *testing.T) {
	dir := t.TempDir()
	base := testRun()
	base.ID = "run-base"

	head := testRun()
	head.ID = "run-head"
	head.Records = head.Records[:2:2] // vm-quiet removed
	head.Records[1].RiskScore = 90    // vm-legacy changed
	head.Records = append(head.Records, Record{
		VMID:      "vm-new",
		Category:  rules.CategoryRehost,
		RiskScore: 40,
		RiskLevel: scoring.LevelMedium,
		RuleName:  rules.RuleWorkloadComplexity,
	})

	path, err := WriteDiffJSON(dir, base, head)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "diff_run-base__run-head.json"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got struct {
		BaseID  string `json:"base_id"`
		HeadID  string `json:"head_id"`
		Summary struct {
			New     int `json:"new"`
			Removed int `json:"removed"`
			Changed int `json:"changed"`
		} `json:"summary"`
		New     []struct{ VMID string `json:"vm_id"` } `json:"new"`
		Removed []struct{ VMID string `json:"vm_id"` } `json:"removed"`
		Changed []struct {
			VMID    string   `json:"vm_id"`
			Changed []string `json:"fields_changed"`
		} `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "run-base", got.BaseID)
	assert.Equal(t, "run-head", got.HeadID)
	assert.Equal(t, 1, got.Summary.New)
	assert.Equal(t, 1, got.Summary.Removed)
	assert.Equal(t, 1, got.Summary.Changed)
	require.Len(t, got.New, 1)
	assert.Equal(t, "vm-new", got.New[0].VMID)
	require.Len(t, got.Removed, 1)
	assert.Equal(t, "vm-quiet", got.Removed[0].VMID)
	require.Len(t, got.Changed, 1)
	assert.Equal(t, "vm-legacy", got.Changed[0].VMID)
	assert.Equal(t, []string{"risk_score"}, got.Changed[0].Changed)
}

func TestWriteDiffJSON_IdenticalRuns(t *testing.T) {
	dir := t.TempDir()
	base := testRun()
	head := testRun()
	head.ID = "run-head"

	path, err := WriteDiffJSON(dir, base, head)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got diffPayload
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Zero(t, got.Summary.NewCount)
	assert.Zero(t, got.Summary.RemovedCount)
	assert.Zero(t, got.Summary.ChangedCount)
}
