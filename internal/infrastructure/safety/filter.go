// Package safety classifies generated commands before they are shown.
//
// Two passes run in order: a regex pass over an ordered rule list (built-in
// rules first, then the optional user rules file) and a structural pass over
// the parsed shell syntax tree. The most severe match wins; the structural
// pass can raise a verdict to risky but never to blocked, and nothing ever
// lowers a verdict.
package safety

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/task-sh/task-sh/assets"
	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// Filter implements ports.SafetyFilter.
type Filter struct {
	rules      []compiledRule
	structural bool
	log        ports.Logger
}

// NewFilter compiles the built-in rule set plus the optional user rules
// file. A broken user file is logged and ignored so that the built-in
// rules stay active.
func NewFilter(security domain.SecuritySettings, log ports.Logger) (*Filter, error) {
	builtin, err := decodeRules(assets.DefaultRulesYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin rules: %w", err)
	}
	f := &Filter{rules: builtin, structural: security.StructuralScan, log: log}
	if security.RulesFile == "" {
		return f, nil
	}
	user, err := loadRulesFile(security.RulesFile)
	if err != nil {
		if log != nil {
			log.Warn("user rules ignored", map[string]interface{}{"error": err.Error()})
		}
		return f, nil
	}
	f.rules = append(f.rules, user...)
	return f, nil
}

// Classify inspects a single command line. It fails closed: an empty or
// syntactically hopeless command is reported as risky, never as safe.
// A pure comment carries no action and is always safe.
func (f *Filter) Classify(command string) domain.SafetyVerdict {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return domain.SafetyVerdict{
			Classification: domain.VerdictRisky,
			MatchedRule:    "empty-command",
			Reasons:        []string{"empty command cannot be inspected"},
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		return domain.SafetyVerdict{Classification: domain.VerdictSafe}
	}

	verdict := domain.SafetyVerdict{Classification: domain.VerdictSafe}
	for _, rule := range f.rules {
		if !rule.re.MatchString(trimmed) {
			continue
		}
		if rule.severity.MoreSevere(verdict.Classification) {
			verdict.Classification = rule.severity
			verdict.MatchedRule = rule.id
		}
		verdict.Reasons = append(verdict.Reasons, ruleReason(rule))
	}

	if f.structural {
		f.inspectStructure(trimmed, &verdict)
	}
	return verdict
}

func ruleReason(rule compiledRule) string {
	if rule.reason != "" {
		return rule.reason
	}
	return "matched rule " + rule.id
}

// inspectStructure parses the command as bash and flags shapes that plain
// regexes miss, like a downloader piped into an interpreter spelled with an
// absolute path. Escalation stops at risky: only explicit rules block.
func (f *Filter) inspectStructure(command string, verdict *domain.SafetyVerdict) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		escalate(verdict, "unparseable-command", "command is not valid shell syntax")
		return
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.BinaryCmd:
			op := n.Op.String()
			if (op == "|" || op == "|&") && invokesAny(n.Y, interpreters) && invokesAny(n.X, downloaders) {
				escalate(verdict, "download-pipe-to-shell", "pipes downloaded content straight into a shell")
			}
		case *syntax.CallExpr:
			if baseName(callName(n)) == "eval" && holdsCmdSubst(n) {
				escalate(verdict, "eval-substitution", "evaluates the output of another command")
			}
		}
		return true
	})
}

// escalate raises the verdict to risky when it is currently safe and always
// records the reason.
func escalate(verdict *domain.SafetyVerdict, rule, reason string) {
	if domain.VerdictRisky.MoreSevere(verdict.Classification) {
		verdict.Classification = domain.VerdictRisky
		verdict.MatchedRule = rule
	}
	verdict.Reasons = append(verdict.Reasons, reason)
}

var downloaders = map[string]bool{
	"curl":  true,
	"wget":  true,
	"fetch": true,
}

var interpreters = map[string]bool{
	"sh":   true,
	"bash": true,
	"zsh":  true,
	"dash": true,
	"ksh":  true,
}

// invokesAny reports whether any call under stmt runs one of the named
// programs, matching on the basename so /bin/sh counts as sh.
func invokesAny(stmt *syntax.Stmt, names map[string]bool) bool {
	if stmt == nil {
		return false
	}
	found := false
	syntax.Walk(stmt, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok {
			if names[baseName(callName(call))] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func callName(call *syntax.CallExpr) string {
	if len(call.Args) == 0 {
		return ""
	}
	return call.Args[0].Lit()
}

func baseName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// holdsCmdSubst reports whether any argument of the call carries a $(...)
// or backquote substitution.
func holdsCmdSubst(call *syntax.CallExpr) bool {
	found := false
	for _, arg := range call.Args[1:] {
		syntax.Walk(arg, func(node syntax.Node) bool {
			if _, ok := node.(*syntax.CmdSubst); ok {
				found = true
				return false
			}
			return true
		})
		if found {
			break
		}
	}
	return found
}

var _ ports.SafetyFilter = (*Filter)(nil)
