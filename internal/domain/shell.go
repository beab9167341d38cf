package domain

import (
	"fmt"
	"strings"
)

// Shell enumerates the target shells commands are generated for.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
)

// ParseShell validates a user-supplied shell selector.
func ParseShell(value string) (Shell, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bash":
		return ShellBash, nil
	case "zsh":
		return ShellZsh, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: bash, zsh)", ErrUnsupportedShell, value)
	}
}

func (s Shell) String() string { return string(s) }

// Valid reports whether s is one of the supported shells.
func (s Shell) Valid() bool {
	return s == ShellBash || s == ShellZsh
}
