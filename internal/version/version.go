// Package version provides the bump-omicron version constant.
package version

// Version is the current bump-omicron version.
const Version = "0.3.0"
