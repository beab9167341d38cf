// Package prompt builds generation requests from task descriptions.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// Builder implements ports.PromptBuilder. All configuration is captured at
// construction; Build itself performs no I/O.
type Builder struct {
	model          string
	systemPrompt   string
	maxTokens      int
	temperature    float64
	includeMachine bool
	machine        ports.MachineInfo
}

// NewBuilder constructs a Builder from loaded configuration.
func NewBuilder(cfg domain.Config, machine ports.MachineInfo) *Builder {
	return &Builder{
		model:          cfg.Backend.Model,
		systemPrompt:   cfg.Backend.SystemPrompt,
		maxTokens:      cfg.Backend.MaxTokens,
		temperature:    cfg.Backend.Temperature,
		includeMachine: cfg.Context.IncludeMachine,
		machine:        machine,
	}
}

// Build turns a description and target shell into a GenerationRequest.
// Empty descriptions and unsupported shells are rejected before any backend
// work happens.
func (b *Builder) Build(description string, shell domain.Shell, overrides domain.PromptOverrides) (domain.GenerationRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.GenerationRequest{}, domain.ErrEmptyDescription
	}
	if !shell.Valid() {
		return domain.GenerationRequest{}, fmt.Errorf("%w: %q (supported: bash, zsh)", domain.ErrUnsupportedShell, shell)
	}

	system := b.systemPrompt
	if overrides.SystemPrompt != "" {
		system = overrides.SystemPrompt
	}
	if system == "" {
		rendered, err := renderSystemPrompt(shell)
		if err != nil {
			return domain.GenerationRequest{}, fmt.Errorf("render system prompt: %w", err)
		}
		system = rendered
	}

	user := description
	if b.includeMachine && !overrides.DisableMachine && b.machine != nil {
		if snippet := machineSnippet(b.machine.Collect()); snippet != "" {
			user = user + "\n\n" + snippet
		}
	}

	model := b.model
	if overrides.Model != "" {
		model = overrides.Model
	}

	return domain.GenerationRequest{
		Description: description,
		Shell:       shell,
		Messages: []domain.PromptMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       model,
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	}, nil
}

type templateData struct {
	Shell string
}

// systemTemplate states the reply contract the response parser expects.
const systemTemplate = `You are an expert {{.Shell}} command-line assistant.
Reply to each task with exactly:
Command: <the single best {{.Shell}} command>
Explanation: <one short sentence describing what it does>
If several commands are equally good, add:
Commands:
- <alternative>
If the task is too vague to produce a command, reply with a single line
starting with '#' asking for the missing detail.
Do not wrap the command in code fences and do not add commentary.`

func renderSystemPrompt(shell domain.Shell) (string, error) {
	tmpl, err := template.New("system").Parse(systemTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Shell: shell.String()}); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func machineSnippet(machine domain.MachineContext) string {
	if machine.OS == "" && machine.Arch == "" && machine.Shell == "" {
		return ""
	}
	snippet := fmt.Sprintf("Machine: %s/%s", machine.OS, machine.Arch)
	if machine.Shell != "" {
		snippet += fmt.Sprintf(", login shell %s", machine.Shell)
	}
	return snippet
}

var _ ports.PromptBuilder = (*Builder)(nil)
