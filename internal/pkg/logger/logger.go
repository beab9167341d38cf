package logger

import (
	"log"
	"os"
)

// StdLogger is a lightweight implementation backed by Go's log package.
// It writes to stderr so stdout stays clean for the generated command.
type StdLogger struct {
	verbose bool
	out     *log.Logger
}

// NewStd creates a StdLogger.
func NewStd(verbose bool) *StdLogger {
	return &StdLogger{
		verbose: verbose,
		out:     log.New(os.Stderr, "task: ", log.LstdFlags),
	}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.out.Println("[DEBUG]", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.out.Println("[INFO]", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.out.Println("[WARN]", msg, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.out.Println("[ERROR]", msg, err, fields)
}
