package cli

import (
	"errors"

	"github.com/task-sh/task-sh/internal/domain"
)

// Exit codes of the task binary. Scripts can branch on the failure class
// without parsing stderr.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitBackend = 2
	ExitParse   = 3
	ExitBlocked = 4
)

// ExitCode maps an error from the command tree to a process exit code.
// Invalid input and everything unclassified share ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		return ExitBlocked
	}
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		return ExitBackend
	}
	var parseErr *domain.ParseError
	if errors.As(err, &parseErr) {
		return ExitParse
	}
	return ExitUsage
}
