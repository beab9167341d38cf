// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// pattern, these interfaces keep the generation pipeline independent of the
// HTTP client, CLI framework, and storage backing the adapters.
package ports

import (
	"context"

	"github.com/task-sh/task-sh/internal/domain"
)

// ConfigProvider loads configuration from persistent storage. It is invoked
// once at startup; the resulting Config is treated as immutable afterwards.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// PromptBuilder turns a task description and a target shell into the
// structured request payload for the generation backend. Pure: all
// configuration is captured at construction, overrides arrive per call.
type PromptBuilder interface {
	Build(description string, shell domain.Shell, overrides domain.PromptOverrides) (domain.GenerationRequest, error)
}

// BackendClient sends a generation request to the remote backend and returns
// the raw reply. When the test-mode override is configured it returns that
// literal value without any network I/O. A failed call surfaces immediately;
// implementations do not retry.
type BackendClient interface {
	Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawReply, error)
}

// ResponseParser extracts a command and an optional explanation from the
// backend's free-text reply. The extracted command is opaque data: it is
// never executed or shell-interpreted here.
type ResponseParser interface {
	Parse(raw domain.RawReply) (domain.ParsedCommand, error)
}

// SafetyFilter classifies a parsed command as safe, risky or blocked using
// an ordered rule set. Deterministic and side-effect free.
type SafetyFilter interface {
	Classify(command string) domain.SafetyVerdict
}

// Presenter renders the final outcome (command, explanation, warning or
// refusal) to the user.
type Presenter interface {
	Present(outcome domain.Outcome)
}

// HistoryStore persists generation records. Writes are best-effort and the
// store is never consulted during generation.
type HistoryStore interface {
	Save(record domain.GenerationRecord) error
	Records(limit int, search string) ([]domain.GenerationRecord, error)
	Clear() error
	ExportJSON(dest string) error
}

// MachineInfo reports host facts embedded into prompts.
type MachineInfo interface {
	Collect() domain.MachineContext
}

// Logger provides leveled logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
