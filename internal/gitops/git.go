// Package gitops wraps the git and gh invocations used to publish a bump.
package gitops

import (
	"context"

	"github.com/oxidecomputer/bump-omicron/internal/shell"
)

// Git runs git in a fixed repository directory.
type Git struct {
	Runner shell.Runner
	Dir    string
}

func (g Git) run(ctx context.Context, args ...string) (string, error) {
	return g.Runner.Run(ctx, g.Dir, "git", args...)
}

// RevParseHead returns the full hash of the checked-out commit.
func (g Git) RevParseHead(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "HEAD")
}

// Checkout switches to an existing branch.
func (g Git) Checkout(ctx context.Context, branch string) error {
	_, err := g.run(ctx, "checkout", branch)
	return err
}

// Pull fetches and merges the upstream of the current branch.
func (g Git) Pull(ctx context.Context) error {
	_, err := g.run(ctx, "pull")
	return err
}

// CheckoutNewBranch creates and checks out a new git branch
func (g Git) CheckoutNewBranch(ctx context.Context, branch string) error {
	_, err := g.run(ctx, "checkout", "-b", branch)
	return err
}

// AddAll stages every change in the working tree.
func (g Git) AddAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "--all")
	return err
}

// Commit records staged changes with a subject and body paragraph.
func (g Git) Commit(ctx context.Context, subject, body string) error {
	_, err := g.run(ctx, "commit", "-m", subject, "-m", body)
	return err
}

// PushUpstream pushes branch to remote and sets it as upstream.
func (g Git) PushUpstream(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "push", "--set-upstream", remote, branch)
	return err
}

// DeleteBranch force-deletes a local branch.
func (g Git) DeleteBranch(ctx context.Context, branch string) error {
	_, err := g.run(ctx, "branch", "-D", branch)
	return err
}

// LogGraph returns `git log --graph --oneline` output for a revision range.
func (g Git) LogGraph(ctx context.Context, revRange string) (string, error) {
	return g.run(ctx, "log", "--graph", "--oneline", revRange)
}
