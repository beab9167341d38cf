// Package sysinfo reports host facts used to steer prompt generation.
package sysinfo

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// Collector implements ports.MachineInfo from the running process.
type Collector struct{}

// NewCollector builds the collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers OS, architecture and login shell.
func (c *Collector) Collect() domain.MachineContext {
	return domain.MachineContext{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: loginShell(),
	}
}

// loginShell returns the basename of $SHELL, or "" when unset.
func loginShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}

var _ ports.MachineInfo = (*Collector)(nil)
