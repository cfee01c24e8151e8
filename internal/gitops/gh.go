package gitops

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cli/go-gh/v2"
	"github.com/oxidecomputer/bump-omicron/internal/shell"
)

// GH runs the GitHub CLI in a fixed repository directory.
type GH struct {
	Runner shell.Runner
	Dir    string
}

// CreatePR opens a pull request for the current branch and returns its URL.
func (g GH) CreatePR(ctx context.Context, title, body string) (string, error) {
	return g.Runner.Run(ctx, g.Dir, "gh", "pr", "create", "--title", title, "--body", body)
}

// ExecFunc matches gh.ExecContext.
type ExecFunc func(ctx context.Context, args ...string) (stdout, stderr bytes.Buffer, err error)

// Workflows queries GitHub Actions runs. The repository is always named
// explicitly so the result does not depend on the process working directory.
type Workflows struct {
	// Exec defaults to gh.ExecContext
	Exec ExecFunc
}

// LatestRunID returns the database id of the most recent run of the named
// workflow in repo (owner/name), or "" if it has never run.
func (w Workflows) LatestRunID(ctx context.Context, repo, workflow string) (string, error) {
	exec := w.Exec
	if exec == nil {
		exec = gh.ExecContext
	}

	stdout, stderr, err := exec(ctx,
		"run", "list",
		"-R", repo,
		"-L", "1",
		"-w", workflow,
		"--json", "databaseId",
		"--jq", ".[0].databaseId",
	)
	if err != nil {
		return "", fmt.Errorf("gh run list failed: %s", strings.TrimSpace(stderr.String()))
	}

	id := strings.TrimSpace(stdout.String())
	if id == "null" {
		return "", nil
	}
	return id, nil
}
