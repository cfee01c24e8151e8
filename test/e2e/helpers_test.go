//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const stubPRURL = "https://github.com/oxidecomputer/omicron/pull/4242"

// CommandResult holds the result of running a command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Workspace is a console checkout with an Omicron checkout next to it.
type Workspace struct {
	Root       string
	ConsoleDir string
	OmicronDir string

	// OldCommit is pinned in Omicron; NewCommit is console HEAD
	OldCommit string
	NewCommit string

	// GHLog collects the arguments of every stub gh invocation
	GHLog string

	env []string
}

// setupWorkspace creates the console repo with two commits, an Omicron repo
// pinned to the first one and tracking a bare origin, and a stub gh on PATH.
func setupWorkspace(t *testing.T) *Workspace {
	t.Helper()

	root := t.TempDir()
	ws := &Workspace{
		Root:       root,
		ConsoleDir: filepath.Join(root, "console"),
		OmicronDir: filepath.Join(root, "omicron"),
		GHLog:      filepath.Join(root, "gh.log"),
	}

	initGitRepo(t, ws.ConsoleDir)
	writeFile(t, filepath.Join(ws.ConsoleDir, "README.md"), "# console\n")
	git(t, ws.ConsoleDir, "add", ".")
	git(t, ws.ConsoleDir, "commit", "-m", "Initial commit")
	ws.OldCommit = git(t, ws.ConsoleDir, "rev-parse", "HEAD")

	writeFile(t, filepath.Join(ws.ConsoleDir, "app.ts"), "export {}\n")
	git(t, ws.ConsoleDir, "add", ".")
	git(t, ws.ConsoleDir, "commit", "-m", "Add app shell (#12)")
	ws.NewCommit = git(t, ws.ConsoleDir, "rev-parse", "HEAD")

	initGitRepo(t, ws.OmicronDir)
	writeFile(t, filepath.Join(ws.OmicronDir, "tools", "console_version"),
		`COMMIT="`+ws.OldCommit+`"`+"\n"+`SHA2="0000"`+"\n")
	git(t, ws.OmicronDir, "add", ".")
	git(t, ws.OmicronDir, "commit", "-m", "Pin console")

	origin := filepath.Join(root, "omicron-origin.git")
	git(t, root, "clone", "--bare", ws.OmicronDir, origin)
	git(t, ws.OmicronDir, "remote", "add", "origin", origin)
	git(t, ws.OmicronDir, "fetch", "origin")
	git(t, ws.OmicronDir, "branch", "--set-upstream-to=origin/main", "main")

	binDir := filepath.Join(root, "bin")
	writeFile(t, filepath.Join(binDir, "gh"),
		"#!/bin/sh\necho \"$@\" >> \"$GH_LOG\"\necho "+stubPRURL+"\n")
	if err := os.Chmod(filepath.Join(binDir, "gh"), 0755); err != nil {
		t.Fatalf("Failed to make stub gh executable: %v", err)
	}

	ws.env = append(os.Environ(),
		"PATH="+binDir+string(os.PathListSeparator)+os.Getenv("PATH"),
		"GH_LOG="+ws.GHLog,
	)
	return ws
}

// serveChecksum starts a checksum server and points the binary at it.
func (ws *Workspace) serveChecksum(t *testing.T, status int, body string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/"+ws.NewCommit+".sha256.txt") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	ws.env = append(ws.env, "BUMP_OMICRON_ARTIFACT_URL="+srv.URL+"/releases/console/{commit}.sha256.txt")
}

// runBump executes the local binary in the console checkout.
func runBump(t *testing.T, ws *Workspace, args ...string) *CommandResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = ws.ConsoleDir
	cmd.Env = ws.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
		if result.Stderr != "" {
			t.Logf("Command stderr: %s", result.Stderr)
		}
	}

	return result
}

// initGitRepo initializes a git repository on main with a local identity.
func initGitRepo(t *testing.T, dir string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	git(t, dir, "init", "-b", "main")
	git(t, dir, "config", "user.email", "test@e2e.local")
	git(t, dir, "config", "user.name", "E2E Test")
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ""
		}
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// assertContains checks that the output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()

	if !strings.Contains(output, expected) {
		t.Errorf("Expected output to contain %q\nGot: %s", expected, output)
	}
}

// assertExitCode checks that the command result has the expected exit code.
func assertExitCode(t *testing.T, result *CommandResult, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			expected, result.ExitCode, result.Stdout, result.Stderr)
	}
}
