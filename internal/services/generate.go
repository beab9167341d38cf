// Package services hosts the application layer: use cases wired from ports,
// free of infrastructure concerns.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// GenerateService orchestrates one generation end-to-end: prompt building,
// backend call, reply parsing, safety filtering, history recording.
type GenerateService struct {
	ConfigProvider ports.ConfigProvider
	PromptBuilder  ports.PromptBuilder
	Backend        ports.BackendClient
	Parser         ports.ResponseParser
	Filter         ports.SafetyFilter
	History        ports.HistoryStore
	Machine        ports.MachineInfo
	Logger         ports.Logger
}

// Run turns a task description into a vetted command outcome. A blocked
// verdict returns a BlockedError together with an outcome whose command has
// been cleared; every other verdict returns the outcome for display.
func (s *GenerateService) Run(req domain.GenerateRequest) (domain.Outcome, error) {
	if s.ConfigProvider == nil || s.PromptBuilder == nil || s.Backend == nil ||
		s.Parser == nil || s.Filter == nil || s.Logger == nil {
		return domain.Outcome{}, errors.New("services.GenerateService dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("load config: %w", err)
	}
	verbose := req.Verbose || cfg.Preferences.Verbose

	shell, err := s.resolveShell(req.Shell, cfg)
	if err != nil {
		return domain.Outcome{}, err
	}

	genReq, err := s.PromptBuilder.Build(req.Description, shell, domain.PromptOverrides{
		Model:          req.ModelOverride,
		SystemPrompt:   req.SystemPromptOverride,
		DisableMachine: req.DisableMachineContext || !cfg.Context.IncludeMachine,
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	raw, err := s.Backend.Invoke(ctx, genReq)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("invoke backend: %w", err)
	}
	s.Logger.Debug("backend replied", map[string]interface{}{
		"bytes":    len(raw.Content),
		"override": raw.FromOverride,
	})

	parsed, err := s.Parser.Parse(raw)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("parse reply: %w", err)
	}

	// Guidance replies carry no runnable command, so there is nothing for
	// the filter to judge.
	verdict := domain.SafetyVerdict{Classification: domain.VerdictSafe}
	if parsed.Guidance == "" {
		verdict = s.Filter.Classify(parsed.Command)
	}

	outcome := domain.Outcome{
		Command:      parsed.Command,
		Explanation:  parsed.Explanation,
		Alternatives: s.vetAlternatives(parsed.Alternatives),
		Guidance:     parsed.Guidance,
		Verdict:      verdict,
		Model:        raw.Model,
		FromOverride: raw.FromOverride,
	}
	if verbose {
		outcome.RawReply = raw.Content
	}
	if verdict.Blocked() {
		outcome.Command = ""
		outcome.Alternatives = nil
	}

	s.record(cfg, req, shell, outcome)

	if verdict.Blocked() {
		return outcome, &domain.BlockedError{Rule: verdict.MatchedRule, Reasons: verdict.Reasons}
	}
	return outcome, nil
}

// resolveShell picks the target shell: explicit selector first, then the
// configured default, then the login shell, then bash.
func (s *GenerateService) resolveShell(selector string, cfg domain.Config) (domain.Shell, error) {
	if selector != "" {
		return domain.ParseShell(selector)
	}
	if cfg.Preferences.DefaultShell != "" {
		return domain.ParseShell(cfg.Preferences.DefaultShell)
	}
	if s.Machine != nil {
		if shell, err := domain.ParseShell(s.Machine.Collect().Shell); err == nil {
			return shell, nil
		}
	}
	return domain.ShellBash, nil
}

// vetAlternatives classifies each alternative and drops the ones the filter
// would block. Risky alternatives stay; they are suggestions, not defaults.
func (s *GenerateService) vetAlternatives(alternatives []string) []string {
	var kept []string
	for _, alt := range alternatives {
		if s.Filter.Classify(alt).Blocked() {
			continue
		}
		kept = append(kept, alt)
	}
	return kept
}

// record appends the outcome to history. Failures only warn: a broken
// history store must not break generation. Guidance replies are not
// recorded since no command was produced.
func (s *GenerateService) record(cfg domain.Config, req domain.GenerateRequest, shell domain.Shell, outcome domain.Outcome) {
	if s.History == nil || !cfg.History.Enabled || outcome.Guidance != "" {
		return
	}
	err := s.History.Save(domain.GenerationRecord{
		Description:  strings.TrimSpace(req.Description),
		Shell:        string(shell),
		Command:      outcome.Command,
		Explanation:  outcome.Explanation,
		Verdict:      outcome.Verdict.Classification,
		MatchedRule:  outcome.Verdict.MatchedRule,
		Model:        outcome.Model,
		FromOverride: outcome.FromOverride,
	})
	if err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}
