// Package shell runs external command-line tools with an explicit working
// directory and captures their output as text.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/cli/safeexec"
)

// Runner interface allows mocking command execution for testing
type Runner interface {
	// Run executes name with args in dir and returns trimmed stdout.
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// LookPathFunc resolves a tool name to an executable path on PATH.
type LookPathFunc func(name string) (string, error)

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run executes the command and returns its trimmed stdout.
// A non-zero exit is reported as a *CommandError carrying the tool's stderr.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	clog.FromContext(ctx).Debugf("running %q in %s", commandLine(name, args), dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Name:   name,
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// LookPath finds name on PATH without resolving to the current directory,
// the same way gh itself locates executables.
func LookPath(name string) (string, error) {
	return safeexec.LookPath(name)
}

// CommandError reports a command that failed to start or exited non-zero.
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("'%s' failed: %v", commandLine(e.Name, e.Args), e.Err)
	}
	return fmt.Sprintf("'%s' failed: %s", commandLine(e.Name, e.Args), e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status, or -1 if the command never ran.
func (e *CommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
