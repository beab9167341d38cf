package safety

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/task-sh/task-sh/internal/domain"
)

// Rule is one pattern-based safety rule as it appears in a rules file.
type Rule struct {
	ID       string `yaml:"id"`
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`
	Reason   string `yaml:"reason"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	id       string
	severity domain.Classification
	reason   string
	re       *regexp.Regexp
}

// decodeRules parses a YAML rule set and compiles every pattern. Patterns
// are matched case-insensitively. Any invalid rule fails the whole load.
func decodeRules(data []byte) ([]compiledRule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	rules := make([]compiledRule, 0, len(file.Rules))
	for i, r := range file.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %q: missing pattern", r.ID)
		}
		severity, err := domain.ParseClassification(r.Severity)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.ID, err)
		}
		if severity == domain.VerdictSafe {
			return nil, fmt.Errorf("rule %q: severity must be risky or blocked", r.ID)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.ID, err)
		}
		rules = append(rules, compiledRule{id: r.ID, severity: severity, reason: r.Reason, re: re})
	}
	return rules, nil
}

// loadRulesFile reads and compiles a user-provided rules file.
func loadRulesFile(path string) ([]compiledRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rules, err := decodeRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
