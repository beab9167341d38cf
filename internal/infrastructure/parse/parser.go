// Package parse extracts a structured command from raw model replies.
package parse

import (
	"strings"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// Parser implements ports.ResponseParser. It scans every line of the reply,
// matching the "Command:" and "Explanation:" headers case-insensitively.
// When the same header appears more than once, the first line that carries a
// non-empty body wins.
type Parser struct{}

// NewParser returns a reply parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts the command, optional explanation, optional alternatives
// listed under a "Commands:" header, and '#'-prefixed guidance replies.
// Code fence markers and prompt decorations are tolerated and stripped.
func (p *Parser) Parse(raw domain.RawReply) (domain.ParsedCommand, error) {
	var (
		command      string
		explanation  string
		guidance     string
		alternatives []string
		inList       bool
		bodies       []string
	)

	for _, line := range strings.Split(raw.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if trimmed == "" {
			continue
		}

		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "commands:"):
			inList = true
			continue
		case strings.HasPrefix(lower, "command:"):
			inList = false
			if command == "" {
				command = cleanCommand(trimmed[len("command:"):])
			}
			continue
		case strings.HasPrefix(lower, "explanation:"):
			inList = false
			if explanation == "" {
				explanation = strings.TrimSpace(trimmed[len("explanation:"):])
			}
			continue
		}

		if inList {
			if body, ok := listItem(trimmed); ok {
				if alt := cleanCommand(body); alt != "" && !strings.HasPrefix(alt, "#") {
					alternatives = append(alternatives, alt)
				}
				continue
			}
			inList = false
		}

		if guidance == "" && strings.HasPrefix(trimmed, "#") {
			guidance = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			continue
		}
		bodies = append(bodies, trimmed)
	}

	if command == "" {
		// Some models skip the header and answer with the bare command.
		// Accept that only when the reply is a single line that does not
		// read like a sentence.
		if len(bodies) == 1 && !looksLikeProse(bodies[0]) {
			command = cleanCommand(bodies[0])
		}
	}

	if command == "" && len(alternatives) > 0 {
		// A reply that only lists alternatives still names a primary
		// suggestion: the first entry.
		command = alternatives[0]
		alternatives = alternatives[1:]
	}

	if strings.HasPrefix(command, "#") {
		if guidance == "" {
			guidance = strings.TrimSpace(strings.TrimPrefix(command, "#"))
		}
		command = ""
	}

	if command == "" {
		if guidance != "" {
			return domain.ParsedCommand{Guidance: guidance}, nil
		}
		return domain.ParsedCommand{}, &domain.ParseError{Reason: domain.ParseNoCommand, Raw: raw.Content}
	}

	return domain.ParsedCommand{
		Command:      command,
		Explanation:  explanation,
		Alternatives: dedupe(alternatives, command),
	}, nil
}

// listItem strips the bullet or number prefix from a "Commands:" list entry.
func listItem(s string) (string, bool) {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "*") {
		return s[1:], true
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[i+1:], true
	}
	return "", false
}

// cleanCommand strips the decorations models wrap commands in: surrounding
// backticks and copy-pasted "$ " or "% " prompts.
func cleanCommand(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "`")
	s = strings.TrimSuffix(s, "`")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$ ")
	s = strings.TrimPrefix(s, "% ")
	return strings.TrimSpace(s)
}

// looksLikeProse reports whether a line reads like an English sentence
// rather than a shell command.
func looksLikeProse(s string) bool {
	if strings.ContainsAny(s, "|&;<>$/\\=") {
		return false
	}
	if len(strings.Fields(s)) < 5 {
		return false
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

func dedupe(alternatives []string, command string) []string {
	if len(alternatives) == 0 {
		return nil
	}
	seen := map[string]bool{command: true}
	var out []string
	for _, alt := range alternatives {
		if seen[alt] {
			continue
		}
		seen[alt] = true
		out = append(out, alt)
	}
	return out
}

var _ ports.ResponseParser = (*Parser)(nil)
