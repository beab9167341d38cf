// Package assets embeds the default files shipped with the binary.
package assets

import (
	_ "embed"
)

// DefaultConfigYAML is written to ~/.task-sh/config.yaml on first run.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultRulesYAML holds the built-in safety rule set. A user rules file
// configured via security.rules_file extends this set, it never replaces it.
//
//go:embed defaults/rules.yaml
var DefaultRulesYAML []byte
