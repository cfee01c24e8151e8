// Package defaults provides embedded default configuration for bump-omicron.
package defaults

import (
	_ "embed"
)

//go:embed defaults.yml
var defaultsYAML []byte

//go:embed help.txt
var helpText string

// YAML returns the embedded default settings document.
func YAML() []byte {
	return defaultsYAML
}

// Help returns the long help text shown by --help.
func Help() string {
	return helpText
}
