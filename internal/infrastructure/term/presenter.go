// Package term renders pipeline outcomes for the terminal. The generated
// command is the only thing written to stdout, so the output stays
// pipeable; explanations, warnings, refusals and diagnostics go to stderr.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xterm "golang.org/x/term"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

var (
	commandStyle  = lipgloss.NewStyle().Bold(true)
	detailStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	refuseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	guidanceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Presenter implements ports.Presenter.
type Presenter struct {
	out       io.Writer
	errOut    io.Writer
	styledOut bool
	styledErr bool
	verbose   bool
}

// NewPresenter builds a presenter for the process streams. Styling is
// decided per stream: a piped stdout gets the bare command even when
// stderr is still a terminal, and NO_COLOR disables styling everywhere.
func NewPresenter(verbose bool) *Presenter {
	return &Presenter{
		out:       os.Stdout,
		errOut:    os.Stderr,
		styledOut: styledTerminal(os.Stdout),
		styledErr: styledTerminal(os.Stderr),
		verbose:   verbose,
	}
}

// Present renders one outcome and returns nothing: display is the end of
// the pipeline.
func (p *Presenter) Present(outcome domain.Outcome) {
	switch {
	case outcome.Verdict.Blocked():
		p.presentBlocked(outcome)
	case outcome.Guidance != "":
		p.presentGuidance(outcome)
	default:
		p.presentCommand(outcome)
	}
	if p.verbose {
		p.presentDiagnostics(outcome)
	}
}

// presentBlocked explains the refusal. The command itself is never shown;
// the service clears it before the outcome reaches us, and we would not
// print it anyway.
func (p *Presenter) presentBlocked(outcome domain.Outcome) {
	fmt.Fprintln(p.errOut, p.detail(refuseStyle, "Refusing to show this command."))
	if rule := outcome.Verdict.MatchedRule; rule != "" {
		fmt.Fprintln(p.errOut, p.detail(detailStyle, "rule: "+rule))
	}
	for _, reason := range outcome.Verdict.Reasons {
		fmt.Fprintln(p.errOut, "  - "+reason)
	}
}

func (p *Presenter) presentGuidance(outcome domain.Outcome) {
	fmt.Fprintln(p.errOut, p.detail(guidanceStyle, "# "+outcome.Guidance))
}

func (p *Presenter) presentCommand(outcome domain.Outcome) {
	if outcome.Verdict.Classification == domain.VerdictRisky {
		fmt.Fprintln(p.errOut, p.detail(warnStyle, "Warning: "+riskSummary(outcome.Verdict)))
	}
	command := outcome.Command
	if p.styledOut {
		command = commandStyle.Render(command)
	}
	fmt.Fprintln(p.out, command)
	if outcome.Explanation != "" {
		fmt.Fprintln(p.errOut, p.detail(detailStyle, outcome.Explanation))
	}
	if len(outcome.Alternatives) > 0 {
		fmt.Fprintln(p.errOut, p.detail(detailStyle, "Also possible:"))
		for _, alt := range outcome.Alternatives {
			fmt.Fprintln(p.errOut, "  "+alt)
		}
	}
}

func (p *Presenter) presentDiagnostics(outcome domain.Outcome) {
	if outcome.RawReply != "" {
		p.ShowRaw(outcome.RawReply)
	}
	if outcome.FromOverride {
		fmt.Fprintln(p.errOut, p.detail(detailStyle, "reply came from the fake response override"))
	} else if outcome.Model != "" {
		fmt.Fprintln(p.errOut, p.detail(detailStyle, "model: "+outcome.Model))
	}
}

// ShowRaw prints the raw backend reply to stderr, indented. Used for
// verbose diagnostics and for showing what an unparsable reply contained.
func (p *Presenter) ShowRaw(raw string) {
	fmt.Fprintln(p.errOut, p.detail(detailStyle, "Raw response:"))
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		fmt.Fprintln(p.errOut, "  "+line)
	}
}

func riskSummary(verdict domain.SafetyVerdict) string {
	if len(verdict.Reasons) > 0 {
		return strings.Join(verdict.Reasons, "; ")
	}
	return "review this command before running it"
}

// detail styles text bound for stderr.
func (p *Presenter) detail(s lipgloss.Style, text string) string {
	if !p.styledErr {
		return text
	}
	return s.Render(text)
}

// styledTerminal reports whether styled output should be emitted on w.
func styledTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && xterm.IsTerminal(int(file.Fd()))
}

var _ ports.Presenter = (*Presenter)(nil)
