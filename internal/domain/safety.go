package domain

import (
	"fmt"
	"strings"
)

// Classification enumerates safety verdicts, ordered by severity.
type Classification string

const (
	VerdictSafe    Classification = "safe"
	VerdictRisky   Classification = "risky"
	VerdictBlocked Classification = "blocked"
)

// ParseClassification validates a rule-file severity value.
func ParseClassification(value string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "safe":
		return VerdictSafe, nil
	case "risky":
		return VerdictRisky, nil
	case "blocked":
		return VerdictBlocked, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected safe, risky or blocked)", value)
	}
}

func (c Classification) String() string { return string(c) }

// Rank orders classifications: Blocked > Risky > Safe.
func (c Classification) Rank() int {
	switch c {
	case VerdictBlocked:
		return 2
	case VerdictRisky:
		return 1
	default:
		return 0
	}
}

// MoreSevere reports whether c outranks other.
func (c Classification) MoreSevere(other Classification) bool {
	return c.Rank() > other.Rank()
}

// SafetyVerdict is the filter's decision for one command. Classification is
// the highest severity across all matched rules; MatchedRule identifies the
// first rule at that severity, for explainability.
type SafetyVerdict struct {
	Classification Classification
	MatchedRule    string
	Reasons        []string
}

// Blocked reports whether the verdict refuses the command outright.
func (v SafetyVerdict) Blocked() bool {
	return v.Classification == VerdictBlocked
}
