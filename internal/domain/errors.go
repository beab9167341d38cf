package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Invalid-input sentinels. Both are rejected before any backend call.
var (
	ErrEmptyDescription = errors.New("task description is empty")
	ErrUnsupportedShell = errors.New("unsupported shell")
)

// BackendReason classifies backend client failures.
type BackendReason string

const (
	BackendNetwork    BackendReason = "network"
	BackendTimeout    BackendReason = "timeout"
	BackendBadStatus  BackendReason = "bad_status"
	BackendBadPayload BackendReason = "bad_payload"
	BackendAuth       BackendReason = "auth"
)

// BackendError reports a failed generation call. A single failure surfaces
// immediately; the client never retries.
type BackendError struct {
	Reason BackendReason
	Status int // HTTP status, set for bad_status
	Err    error
}

func (e *BackendError) Error() string {
	switch e.Reason {
	case BackendTimeout:
		return "backend request timed out"
	case BackendBadStatus:
		if e.Err != nil {
			return fmt.Sprintf("backend returned status %d: %v", e.Status, e.Err)
		}
		return fmt.Sprintf("backend returned status %d", e.Status)
	case BackendBadPayload:
		if e.Err != nil {
			return fmt.Sprintf("backend reply unreadable: %v", e.Err)
		}
		return "backend reply unreadable"
	case BackendAuth:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "backend credential missing"
	default:
		if e.Err != nil {
			return fmt.Sprintf("backend request failed: %v", e.Err)
		}
		return "backend request failed"
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

// ParseReason classifies response parser failures.
type ParseReason string

// ParseNoCommand means no recognizable command line was located in the reply.
const ParseNoCommand ParseReason = "no_command_found"

// ParseError reports an unusable backend reply. Raw carries the original
// reply so verbose mode can surface it next to the failure.
type ParseError struct {
	Reason ParseReason
	Raw    string
}

func (e *ParseError) Error() string {
	return "no command found in backend reply"
}

// BlockedError is the terminal policy outcome for a blocked command. It is
// not a technical failure, but it exits non-zero so callers can detect
// refusal. It names the rule that fired.
type BlockedError struct {
	Rule    string
	Reasons []string
}

func (e *BlockedError) Error() string {
	msg := "command blocked by safety filter"
	if e.Rule != "" {
		msg += fmt.Sprintf(" (rule %s)", e.Rule)
	}
	if len(e.Reasons) > 0 {
		msg += ": " + strings.Join(e.Reasons, "; ")
	}
	return msg
}
