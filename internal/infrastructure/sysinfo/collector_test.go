package sysinfo

import (
	"runtime"
	"testing"
)

func TestCollectReportsRuntimeFacts(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")

	machine := NewCollector().Collect()
	if machine.OS != runtime.GOOS {
		t.Fatalf("OS = %q, want %q", machine.OS, runtime.GOOS)
	}
	if machine.Arch != runtime.GOARCH {
		t.Fatalf("Arch = %q, want %q", machine.Arch, runtime.GOARCH)
	}
	if machine.Shell != "zsh" {
		t.Fatalf("Shell = %q, want zsh", machine.Shell)
	}
}

func TestCollectShellBasename(t *testing.T) {
	tests := []struct {
		name  string
		shell string
		want  string
	}{
		{name: "absolute path", shell: "/usr/local/bin/bash", want: "bash"},
		{name: "unsupported shell kept verbatim", shell: "/usr/bin/fish", want: "fish"},
		{name: "unset yields empty", shell: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELL", tt.shell)
			if got := NewCollector().Collect().Shell; got != tt.want {
				t.Fatalf("Shell = %q, want %q", got, tt.want)
			}
		})
	}
}
