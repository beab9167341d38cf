package term

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// SpinnerClient decorates a backend client with a progress spinner on
// stderr while the request is in flight. It steps aside whenever animation
// would be wrong: spinner disabled, stderr not a terminal, or the reply
// coming from the offline override.
type SpinnerClient struct {
	next    ports.BackendClient
	enabled bool
	out     io.Writer
}

// NewSpinnerClient wraps next. With enabled false the wrapper is inert.
func NewSpinnerClient(next ports.BackendClient, enabled bool) *SpinnerClient {
	return &SpinnerClient{next: next, enabled: enabled, out: os.Stderr}
}

// SetEnabled flips animation on or off, letting a command line flag
// override the configured preference after construction.
func (s *SpinnerClient) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Invoke runs the wrapped call, animating only when it may touch the
// network and stderr is a terminal.
func (s *SpinnerClient) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawReply, error) {
	if !s.enabled || !isTerminal(s.out) {
		return s.next.Invoke(ctx, req)
	}

	program := tea.NewProgram(
		newSpinnerModel(ctx, s.next, req),
		tea.WithOutput(s.out),
		// The description may be piped on stdin; never read it here.
		tea.WithInput(nil),
	)
	final, err := program.Run()
	if err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: domain.BackendNetwork, Err: err}
	}
	m := final.(spinnerModel)
	return m.reply, m.err
}

type resultMsg struct {
	reply domain.RawReply
	err   error
}

type spinnerModel struct {
	spin  spinner.Model
	call  tea.Cmd
	reply domain.RawReply
	err   error
	done  bool
}

func newSpinnerModel(ctx context.Context, next ports.BackendClient, req domain.GenerationRequest) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = guidanceStyle
	return spinnerModel{
		spin: sp,
		call: func() tea.Msg {
			reply, err := next.Invoke(ctx, req)
			return resultMsg{reply: reply, err: err}
		},
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.call)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.reply = msg.reply
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View returns empty once done so the spinner line disappears instead of
// lingering above the real output.
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spin.View() + " generating..."
}

var _ ports.BackendClient = (*SpinnerClient)(nil)
