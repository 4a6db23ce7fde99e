package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

const testCatalog = `
- name: zombie-detection
  category: retire
  confidence: high
- name: legacy-os-detection
  category: keep
  confidence: high
- name: workload-complexity
  category: rehost
  confidence: medium
- name: conservative-refactor
  category: refactor_candidate
  confidence: medium
- name: default-conservative
  category: keep
  confidence: medium
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	engine, err := NewEngine(path)
	require.NoError(t, err)
	return engine
}

// baseVM returns a quiet powered-on VM that reaches the default tier.
func baseVM() inventory.VM {
	return inventory.VM{
		SchemaVersion:  1,
		VMID:           "vm-test",
		Name:           "test",
		PowerState:     inventory.PoweredOn,
		CPU:            2,
		MemoryMB:       4096,
		DiskGB:         80,
		GuestOS:        "Fedora 34",
		ToolsStatus:    inventory.ToolsRunning,
		NICs:           1,
		SnapshotCount:  0,
		AvgCPUUsagePct: 30,
		AvgMemUsagePct: 30,
		UptimeDays:     100,
		Tags:           []string{},
	}
}

func TestClassify_ZombieVM_Retires(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.PowerState = inventory.PoweredOff
	vm.GuestOS = "Ubuntu 18.04"
	vm.Tags = []string{"powered_off_days=120"}

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRetire, res.Category)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, RuleZombieDetection, res.RuleName)
	assert.Contains(t, res.Reason, "120 days")
}

func TestClassify_ZombieOverridesRefactorEligibility(t *testing.T) {
	engine := newTestEngine(t)
	// Meets every refactor-candidate criterion, but the zombie tier
	// runs first and must win.
	vm := baseVM()
	vm.PowerState = inventory.PoweredOff
	vm.GuestOS = "Ubuntu 20.04"
	vm.DiskGB = 50
	vm.UptimeDays = 1
	vm.Tags = []string{"powered_off_days=90"}

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRetire, res.Category)
	assert.Equal(t, RuleZombieDetection, res.RuleName)
}

func TestClassify_ZombieOverridesLegacyOS(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.PowerState = inventory.PoweredOff
	vm.GuestOS = "Windows Server 2008 R2"
	vm.Tags = []string{"powered_off_days=61"}

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRetire, res.Category)
	assert.Equal(t, RuleZombieDetection, res.RuleName)
}

func TestClassify_PoweredOnNeverZombie(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.Tags = []string{"powered_off_days=120"} // tag present but powered on

	res := engine.Classify(&vm)

	assert.NotEqual(t, CategoryRetire, res.Category)
}

func TestClassify_ZombieTagEdgeCases(t *testing.T) {
	engine := newTestEngine(t)
	cases := []struct {
		name string
		tags []string
	}{
		{"no tag", []string{}},
		{"malformed value", []string{"powered_off_days=soon"}},
		{"empty value", []string{"powered_off_days="}},
		{"at threshold", []string{"powered_off_days=60"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vm := baseVM()
			vm.PowerState = inventory.PoweredOff
			vm.Tags = tc.tags
			res := engine.Classify(&vm)
			assert.NotEqual(t, RuleZombieDetection, res.RuleName)
		})
	}
}

func TestClassify_LegacyOS_AlwaysKeep(t *testing.T) {
	engine := newTestEngine(t)
	cases := []struct {
		guestOS string
		want    string
	}{
		{"Windows Server 2008 R2", "Windows Server 2008"},
		{"Microsoft Windows Server 2003", "Windows Server 2003"},
		{"RHEL 6", "RHEL 6"},
		{"CentOS 6.10", "CentOS 6"},
	}
	for _, tc := range cases {
		t.Run(tc.guestOS, func(t *testing.T) {
			vm := baseVM()
			vm.GuestOS = tc.guestOS
			res := engine.Classify(&vm)
			assert.Equal(t, CategoryKeep, res.Category)
			assert.Equal(t, ConfidenceHigh, res.Confidence)
			assert.Equal(t, RuleLegacyOSDetection, res.RuleName)
			assert.Contains(t, res.Reason, tc.want)
		})
	}
}

func TestClassify_LegacyOS_CaseInsensitive(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.GuestOS = "centos 6 final"
	res := engine.Classify(&vm)
	assert.Equal(t, RuleLegacyOSDetection, res.RuleName)
}

func TestClassify_Complexity_SingleFragmentMediumConfidence(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.SnapshotCount = 8

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRehost, res.Category)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
	assert.Equal(t, RuleWorkloadComplexity, res.RuleName)
	assert.Contains(t, res.Reason, "8 snapshots")
}

func TestClassify_Complexity_TwoFragmentsHighConfidence(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.SnapshotCount = 8
	vm.NICs = 4

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRehost, res.Category)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	// Fragments joined in fixed check order.
	assert.Equal(t,
		"Complex snapshot state (8 snapshots) requires stateful rehost; "+
			"Multi-NIC configuration (4 NICs) requires careful networking planning",
		res.Reason)
}

func TestClassify_Complexity_EachTrigger(t *testing.T) {
	engine := newTestEngine(t)
	cases := []struct {
		name   string
		mutate func(vm *inventory.VM)
		frag   string
	}{
		{"snapshots", func(vm *inventory.VM) { vm.SnapshotCount = 6 }, "Complex snapshot state"},
		{"nics", func(vm *inventory.VM) { vm.NICs = 4 }, "Multi-NIC configuration"},
		{"tools not running", func(vm *inventory.VM) { vm.ToolsStatus = inventory.ToolsNotRunning }, "VMware Tools notRunning"},
		{"tools unknown", func(vm *inventory.VM) { vm.ToolsStatus = inventory.ToolsUnknown }, "VMware Tools unknown"},
		{"large disk", func(vm *inventory.VM) { vm.DiskGB = 500 }, "Large disk footprint (500 GB)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vm := baseVM()
			tc.mutate(&vm)
			res := engine.Classify(&vm)
			require.Equal(t, CategoryRehost, res.Category)
			assert.Contains(t, res.Reason, tc.frag)
		})
	}
}

func TestClassify_RefactorCandidate(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	vm.GuestOS = "Ubuntu 20.04"
	vm.DiskGB = 50
	vm.UptimeDays = 1

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryRefactorCandidate, res.Category)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
	assert.Equal(t, RuleConservativeRefactor, res.RuleName)
}

func TestClassify_RefactorDisqualifiers(t *testing.T) {
	engine := newTestEngine(t)
	cases := []struct {
		name   string
		mutate func(vm *inventory.VM)
	}{
		{"not linux", func(vm *inventory.VM) { vm.GuestOS = "Windows Server 2019" }},
		{"snapshot present", func(vm *inventory.VM) { vm.SnapshotCount = 1 }},
		{"hot cpu", func(vm *inventory.VM) { vm.AvgCPUUsagePct = 75 }},
		{"hot memory", func(vm *inventory.VM) { vm.AvgMemUsagePct = 75 }},
		{"long uptime", func(vm *inventory.VM) { vm.UptimeDays = 400 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vm := baseVM()
			vm.GuestOS = "Ubuntu 20.04"
			vm.DiskGB = 50
			vm.UptimeDays = 1
			tc.mutate(&vm)
			res := engine.Classify(&vm)
			assert.NotEqual(t, CategoryRefactorCandidate, res.Category)
		})
	}
}

func TestClassify_NonzeroRiskTally_FallsToDefault(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM() // Fedora, nonzero snapshot below
	vm.SnapshotCount = 1

	res := engine.Classify(&vm)

	assert.Equal(t, CategoryKeep, res.Category)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
	assert.Equal(t, RuleDefaultConservative, res.RuleName)
	assert.Equal(t, "Conservative default: keep on-premises", res.Reason)
}

func TestClassify_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	vm := baseVM()
	first := engine.Classify(&vm)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Classify(&vm))
	}
}

func TestClassify_CategoryAndConfidenceClosure(t *testing.T) {
	engine := newTestEngine(t)
	vms := []inventory.VM{baseVM()}

	zombie := baseVM()
	zombie.PowerState = inventory.PoweredOff
	zombie.Tags = []string{"powered_off_days=120"}
	vms = append(vms, zombie)

	legacy := baseVM()
	legacy.GuestOS = "Windows Server 2008"
	vms = append(vms, legacy)

	complexVM := baseVM()
	complexVM.NICs = 4
	complexVM.SnapshotCount = 8
	vms = append(vms, complexVM)

	refactor := baseVM()
	refactor.GuestOS = "Ubuntu 20.04"
	refactor.DiskGB = 50
	refactor.UptimeDays = 1
	vms = append(vms, refactor)

	for _, vm := range vms {
		res := engine.Classify(&vm)
		assert.Contains(t, AllowedCategories(), res.Category)
		assert.Contains(t, AllowedConfidences(), res.Confidence)
	}
}

func TestCascade_FixedOrder(t *testing.T) {
	names := make([]string, 0, 5)
	for _, tier := range Cascade() {
		names = append(names, tier.Name)
	}
	assert.Equal(t, []string{
		RuleZombieDetection,
		RuleLegacyOSDetection,
		RuleWorkloadComplexity,
		RuleConservativeRefactor,
		RuleDefaultConservative,
	}, names)
}
