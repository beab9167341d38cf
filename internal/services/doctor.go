package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// DoctorService runs environment diagnostics: can the tool load its config,
// judge commands, reach the backend and record history on this machine.
type DoctorService struct {
	ConfigProvider ports.ConfigProvider
	Filter         ports.SafetyFilter
	History        ports.HistoryStore
	Machine        ports.MachineInfo
}

// Run executes checks and returns a report. Only a config failure aborts;
// everything after degrades to warn entries.
func (s *DoctorService) Run(ctx context.Context) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, errors.New("services.DoctorService dependencies not satisfied")
	}

	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	checks = append(checks, s.rulesCheck(cfg))
	checks = append(checks, credentialCheck(cfg.Backend))
	checks = append(checks, s.historyCheck(cfg.History))

	if s.Machine != nil {
		machine := s.Machine.Collect()
		details := machine.OS + "/" + machine.Arch
		if machine.Shell != "" {
			details += ", login shell " + machine.Shell
		}
		checks = append(checks, ok("Machine", details))
	}

	return domain.HealthReport{Checks: checks}, nil
}

// rulesCheck probes the filter with a harmless command. A non-safe verdict
// for plain ls means a user rule is overmatching.
func (s *DoctorService) rulesCheck(cfg domain.Config) domain.HealthCheck {
	if s.Filter == nil {
		return warn("Safety rules", "filter not initialized")
	}
	if verdict := s.Filter.Classify("ls"); verdict.Classification != domain.VerdictSafe {
		return warn("Safety rules", fmt.Sprintf("rule %s matches plain ls", verdict.MatchedRule))
	}
	if cfg.Security.RulesFile != "" {
		if _, err := os.Stat(cfg.Security.RulesFile); err != nil {
			return warn("Safety rules", fmt.Sprintf("user rules file unreadable: %v", err))
		}
		return ok("Safety rules", fmt.Sprintf("built-in rules plus %s", cfg.Security.RulesFile))
	}
	return ok("Safety rules", "built-in rules loaded")
}

func credentialCheck(backend domain.BackendSettings) domain.HealthCheck {
	if backend.FakeResponse != "" {
		return ok("Credential", "test override active, backend not contacted")
	}
	if backend.APIKey == "" {
		return warn("Credential", backend.AuthEnvVar+" not set")
	}
	return ok("Credential", backend.AuthEnvVar+" set")
}

func (s *DoctorService) historyCheck(settings domain.HistorySettings) domain.HealthCheck {
	if !settings.Enabled {
		return ok("History", "disabled")
	}
	if s.History == nil {
		return warn("History", "store not initialized")
	}
	if _, err := s.History.Records(1, ""); err != nil {
		return warn("History", fmt.Sprintf("store unreadable: %v", err))
	}
	return ok("History", settings.Path)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
