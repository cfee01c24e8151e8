// Package versionfile reads and writes Omicron's tools/console_version file,
// a two-line KEY="value" record of the pinned console commit and tarball hash.
package versionfile

import (
	"fmt"
	"os"
	"strings"
)

// Keys present in every version file.
const (
	KeyCommit = "COMMIT"
	KeySHA2   = "SHA2"
)

// ParseError reports a line that is not a KEY=value pair.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("version file line %d: expected KEY=value, got %q", e.Line, e.Text)
}

// Parse splits contents into KEY=value pairs. Each line is trimmed and split
// on its first '='; one layer of matching single or double quotes is
// stripped from the value and nothing else. Blank lines are skipped.
func Parse(contents string) (map[string]string, error) {
	values := make(map[string]string)

	for i, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &ParseError{Line: i + 1, Text: line}
		}

		values[key] = unquote(value)
	}

	return values, nil
}

// Serialize renders the on-disk form of a version file.
func Serialize(commit, sha2 string) string {
	return fmt.Sprintf("%s=\"%s\"\n%s=\"%s\"\n", KeyCommit, commit, KeySHA2, sha2)
}

// Read loads and parses the version file at path.
func Read(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read version file: %w", err)
	}
	return Parse(string(data))
}

// Commit returns the COMMIT value from the version file at path.
func Commit(path string) (string, error) {
	values, err := Read(path)
	if err != nil {
		return "", err
	}

	commit := values[KeyCommit]
	if commit == "" {
		return "", fmt.Errorf("version file %s has no %s value", path, KeyCommit)
	}
	return commit, nil
}

// Write replaces the version file at path with the given commit and hash.
func Write(path, commit, sha2 string) error {
	return os.WriteFile(path, []byte(Serialize(commit, sha2)), 0644)
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}

	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
