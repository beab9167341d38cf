// Package domain defines the core entities and value objects of task-sh.
//
// The domain layer is independent of infrastructure concerns: it holds the
// pipeline's data model (request, reply, parsed command, verdict, outcome)
// and the error taxonomy, nothing else.
package domain

import "context"

// PromptMessage follows the role/content pair required by chat APIs.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is the immutable payload handed to the backend client,
// constructed once per invocation by the prompt builder.
type GenerationRequest struct {
	Description string
	Shell       Shell
	Messages    []PromptMessage
	Model       string
	MaxTokens   int
	Temperature float64
}

// RawReply is the backend's free-text reply. It is consumed only by the
// response parser, and surfaced verbatim in verbose mode.
type RawReply struct {
	Content      string
	Model        string
	FromOverride bool
}

// ParsedCommand is the structured result extracted from a RawReply.
// Exactly one of Command and Guidance is non-empty when parsing succeeds:
// Guidance holds the advice text of a comment-only reply ('#'-prefixed),
// which carries no runnable command.
type ParsedCommand struct {
	Command      string
	Explanation  string
	Alternatives []string
	Guidance     string
}

// PromptOverrides carries per-invocation prompt adjustments; flags win over
// configuration. Zero values mean "use the builder's defaults".
type PromptOverrides struct {
	Model          string
	SystemPrompt   string
	DisableMachine bool
}

// GenerateRequest captures user intent for one generation, originating from
// the CLI.
type GenerateRequest struct {
	Context               context.Context
	Description           string
	Shell                 string // raw selector; empty means config default
	ModelOverride         string
	SystemPromptOverride  string
	Verbose               bool
	DisableMachineContext bool
}

// Outcome is the value handed to the presenter: one per invocation, never
// persisted as such, discarded after display. RawReply is populated only in
// verbose mode. For blocked verdicts Command and Alternatives are cleared
// before the outcome leaves the service.
type Outcome struct {
	Command      string
	Explanation  string
	Alternatives []string
	Guidance     string
	Verdict      SafetyVerdict
	RawReply     string
	Model        string
	FromOverride bool
}
