package rules

import (
	"sort"
	"strings"
)

// Migration disposition categories. The vocabulary is closed; the catalog
// validator rejects anything outside it.
const (
	CategoryRehost            = "rehost"
	CategoryRefactorCandidate = "refactor_candidate"
	CategoryRetire            = "retire"
	CategoryKeep              = "keep"
)

// Classification confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var allowedCategories = map[string]bool{
	CategoryRehost:            true,
	CategoryRefactorCandidate: true,
	CategoryRetire:            true,
	CategoryKeep:              true,
}

var allowedConfidences = map[string]bool{
	ConfidenceHigh:   true,
	ConfidenceMedium: true,
	ConfidenceLow:    true,
}

// AllowedCategories returns the closed category vocabulary, sorted.
func AllowedCategories() []string {
	return sortedKeys(allowedCategories)
}

// AllowedConfidences returns the closed confidence vocabulary, sorted.
func AllowedConfidences() []string {
	return sortedKeys(allowedConfidences)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func validCategory(s string) bool   { return allowedCategories[strings.ToLower(s)] }
func validConfidence(s string) bool { return allowedConfidences[strings.ToLower(s)] }
