package rules

import (
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

// Result is the classification decision for one VM record.
type Result struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	RuleName   string `json:"rule_name"`
	Reason     string `json:"reason"`
}

// Tier is one priority level of the decision cascade. Eval reports
// whether the tier matched; the first match wins.
type Tier struct {
	Name string
	Eval func(vm *inventory.VM) (Result, bool)
}

// Engine evaluates the fixed five-tier cascade. The catalog loaded at
// construction is validated governance metadata only; it does not
// parameterize the cascade.
type Engine struct {
	catalog []Descriptor
	tiers   []Tier
}

// NewEngine loads and validates the rule catalog and builds the cascade.
// Catalog validation failures are fatal construction errors.
func NewEngine(catalogPath string) (*Engine, error) {
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return &Engine{catalog: catalog, tiers: Cascade()}, nil
}

// Cascade returns the fixed priority-ordered tier list. Exposed so each
// tier stays independently testable.
func Cascade() []Tier {
	return []Tier{
		{Name: RuleZombieDetection, Eval: evalZombie},
		{Name: RuleLegacyOSDetection, Eval: evalLegacyOS},
		{Name: RuleWorkloadComplexity, Eval: evalComplexity},
		{Name: RuleConservativeRefactor, Eval: evalRefactor},
		{Name: RuleDefaultConservative, Eval: evalDefault},
	}
}

// Catalog returns the validated rule descriptors.
func (e *Engine) Catalog() []Descriptor {
	return e.catalog
}

// Classify runs the cascade in priority order and returns the first
// matching tier's decision. The final tier matches every record, so a
// result is always produced.
func (e *Engine) Classify(vm *inventory.VM) Result {
	for _, t := range e.tiers {
		if res, ok := t.Eval(vm); ok {
			return res
		}
	}
	// Unreachable: the default tier always matches.
	res, _ := evalDefault(vm)
	return res
}
