// Package bump pins the current console build in Omicron's
// tools/console_version and opens a pull request with the change.
//
// A run is linear: resolve the console commit, fetch the tarball checksum
// for it, then either print the new version file (dry run) or rewrite the
// file in the Omicron checkout on a fresh branch, commit, and open a PR. The
// first failing step ends the run; nothing already done in the Omicron
// checkout is rolled back.
package bump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/oxidecomputer/bump-omicron/internal/api"
	"github.com/oxidecomputer/bump-omicron/internal/artifact"
	"github.com/oxidecomputer/bump-omicron/internal/config"
	"github.com/oxidecomputer/bump-omicron/internal/gitops"
	"github.com/oxidecomputer/bump-omicron/internal/shell"
	"github.com/oxidecomputer/bump-omicron/internal/versionfile"
)

// PRTitle is the title of every bump pull request.
const PRTitle = "Bump console to latest main"

// Prerequisite errors, raised before anything in the Omicron checkout changes.
var (
	ErrGHMissing      = errors.New("GitHub CLI not found. This script needs it to create a PR. Please install it and try again.")
	ErrOmicronMissing = errors.New("Omicron directory not found. This script assumes Omicron is cloned in a sibling directory next to Console.")
)

// WorkflowLister finds the latest run of a GitHub Actions workflow.
type WorkflowLister interface {
	LatestRunID(ctx context.Context, repo, workflow string) (string, error)
}

// AutoMerger enables auto-merge on a pull request given its URL.
type AutoMerger interface {
	EnableAutoMergeForURL(prURL string, method api.MergeMethod) error
}

// Deps are the external systems a run talks to.
type Deps struct {
	Runner    shell.Runner
	LookPath  shell.LookPathFunc
	HTTP      *http.Client
	Workflows WorkflowLister

	// NewAutoMerger is only called when auto-merge is requested, with the
	// GitHub host the pull request lives on
	NewAutoMerger func(host string) (AutoMerger, error)

	Stdout io.Writer
}

// DefaultDeps wires the real git, gh, and HTTP implementations.
func DefaultDeps(stdout io.Writer) Deps {
	return Deps{
		Runner:    shell.ExecRunner{},
		LookPath:  shell.LookPath,
		HTTP:      http.DefaultClient,
		Workflows: gitops.Workflows{},
		NewAutoMerger: func(host string) (AutoMerger, error) {
			return api.NewClientWithOptions(api.ClientOptions{Host: host})
		},
		Stdout: stdout,
	}
}

// Options control a single run.
type Options struct {
	DryRun bool

	// Message is appended to the PR title in parentheses
	Message string

	// Push the new branch before creating the PR
	Push bool

	// AutoMerge sets the PR to squash-merge once checks pass
	AutoMerge bool
}

// Bumper runs bumps for one console checkout.
type Bumper struct {
	cfg        *config.Config
	consoleDir string
	deps       Deps
}

// New creates a Bumper for the console checkout at consoleDir.
func New(cfg *config.Config, consoleDir string, deps Deps) *Bumper {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Runner == nil {
		deps.Runner = shell.ExecRunner{}
	}
	if deps.LookPath == nil {
		deps.LookPath = shell.LookPath
	}
	return &Bumper{cfg: cfg, consoleDir: consoleDir, deps: deps}
}

// OmicronDir returns the sibling checkout path.
func (b *Bumper) OmicronDir() string {
	if filepath.IsAbs(b.cfg.OmicronDir) {
		return filepath.Clean(b.cfg.OmicronDir)
	}
	return filepath.Join(b.consoleDir, b.cfg.OmicronDir)
}

// VersionFilePath returns the path of tools/console_version in the sibling checkout.
func (b *Bumper) VersionFilePath() string {
	return filepath.Join(b.OmicronDir(), b.cfg.VersionFile)
}

// ResolveCurrentCommit returns the full hash of the console checkout's HEAD.
func (b *Bumper) ResolveCurrentCommit(ctx context.Context) (string, error) {
	return b.consoleGit().RevParseHead(ctx)
}

// FetchArtifactChecksum returns the published tarball checksum for commit.
func (b *Bumper) FetchArtifactChecksum(ctx context.Context, commit string) (string, error) {
	f := artifact.Fetcher{Client: b.deps.HTTP, URLTemplate: b.cfg.ArtifactURL}
	return f.FetchChecksum(ctx, commit)
}

// Run performs the bump.
func (b *Bumper) Run(ctx context.Context, opts Options) error {
	log := clog.FromContext(ctx)

	newCommit, err := b.ResolveCurrentCommit(ctx)
	if err != nil {
		return err
	}

	newSHA2, err := b.FetchArtifactChecksum(ctx, newCommit)
	if err != nil {
		return b.explainChecksumError(ctx, err)
	}

	if opts.DryRun {
		_, err := fmt.Fprint(b.deps.Stdout, versionfile.Serialize(newCommit, newSHA2))
		return err
	}

	if _, err := b.deps.LookPath("gh"); err != nil {
		return ErrGHMissing
	}

	omicronDir := b.OmicronDir()
	if info, err := os.Stat(omicronDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w (expected at '%s')", ErrOmicronMissing, omicronDir)
	}

	omicron := gitops.Git{Runner: b.deps.Runner, Dir: omicronDir}

	if err := omicron.Checkout(ctx, b.cfg.BaseBranch); err != nil {
		return err
	}
	if err := omicron.Pull(ctx); err != nil {
		return err
	}

	branch := BranchName(b.cfg.BranchPrefix, newCommit)
	if err := omicron.CheckoutNewBranch(ctx, branch); err != nil {
		return err
	}
	log.Infof("Created branch %s", branch)

	versionPath := b.VersionFilePath()
	oldCommit, err := versionfile.Commit(versionPath)
	if err != nil {
		return err
	}
	if oldCommit == newCommit {
		log.Warnf("Omicron already has console commit %s pinned", ShortCommit(newCommit))
	}

	req := Request{
		NewCommit: newCommit,
		NewSHA2:   newSHA2,
		OldCommit: oldCommit,
		Branch:    branch,
		Message:   opts.Message,
	}
	title := req.Title()
	body := req.Body(b.cfg.CompareURL(oldCommit, newCommit), b.commitList(ctx, oldCommit, newCommit))

	log.Info("Prepared bump",
		"branch", branch,
		"title", title,
		"version_file", versionfile.Serialize(newCommit, newSHA2),
		"body", body,
	)

	if err := versionfile.Write(versionPath, newCommit, newSHA2); err != nil {
		return err
	}
	log.Infof("Updated %s", versionPath)

	if err := omicron.AddAll(ctx); err != nil {
		return err
	}
	if err := omicron.Commit(ctx, title, body); err != nil {
		return err
	}
	log.Infof("Committed changes")

	if opts.Push {
		if err := omicron.PushUpstream(ctx, b.cfg.Remote, branch); err != nil {
			return err
		}
		log.Infof("Pushed %s to %s", branch, b.cfg.Remote)
	}

	gh := gitops.GH{Runner: b.deps.Runner, Dir: omicronDir}
	prURL, err := gh.CreatePR(ctx, title, body)
	if err != nil {
		return err
	}
	log.Infof("PR created")
	if _, err := fmt.Fprintln(b.deps.Stdout, prURL); err != nil {
		return err
	}

	if opts.AutoMerge {
		if err := b.enableAutoMerge(prURL); err != nil {
			return err
		}
		log.Infof("PR set to auto-merge when CI passes")
	}

	if opts.Push {
		// the branch lives on the remote now
		if err := omicron.Checkout(ctx, b.cfg.BaseBranch); err != nil {
			return err
		}
		if err := omicron.DeleteBranch(ctx, branch); err != nil {
			return err
		}
		log.Infof("Checked out Omicron %s, deleted branch %s", b.cfg.BaseBranch, branch)
	}

	return nil
}

func (b *Bumper) consoleGit() gitops.Git {
	return gitops.Git{Runner: b.deps.Runner, Dir: b.consoleDir}
}

// commitList renders the console commits between the two pins as markdown.
// Failures only drop the list from the PR body.
func (b *Bumper) commitList(ctx context.Context, oldCommit, newCommit string) string {
	out, err := b.consoleGit().LogGraph(ctx, oldCommit+"..."+newCommit)
	if err != nil {
		clog.FromContext(ctx).Warnf("Leaving commit list out of PR body: %v", err)
		return ""
	}
	return LinkifyLog(out, b.cfg.ConsoleRepo, b.cfg.CommitURL)
}

func (b *Bumper) enableAutoMerge(prURL string) error {
	if b.deps.NewAutoMerger == nil {
		return fmt.Errorf("auto-merge is not available")
	}
	pr, err := api.ParsePullRequestURL(prURL)
	if err != nil {
		return err
	}
	merger, err := b.deps.NewAutoMerger(pr.Host)
	if err != nil {
		return err
	}
	return merger.EnableAutoMergeForURL(prURL, api.MergeMethodSquash)
}

// explainChecksumError adds operator guidance to a missing-checksum response.
func (b *Bumper) explainChecksumError(ctx context.Context, err error) error {
	var statusErr *artifact.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	hint := "Failed to fetch console tarball SHA. Either the current commit has not been pushed to origin/main or the CI job that uploads the assets is still running."
	if runID := b.latestUploadRun(ctx); runID != "" {
		hint += fmt.Sprintf("\n\nRun 'gh run watch %s' to watch the latest asset upload action.", runID)
	}

	return &ChecksumError{Err: statusErr, Hint: hint}
}

func (b *Bumper) latestUploadRun(ctx context.Context) string {
	if b.deps.Workflows == nil || b.cfg.UploadWorkflow == "" {
		return ""
	}
	if _, err := b.deps.LookPath("gh"); err != nil {
		return ""
	}

	id, err := b.deps.Workflows.LatestRunID(ctx, b.cfg.ConsoleRepo, b.cfg.UploadWorkflow)
	if err != nil {
		clog.FromContext(ctx).Debugf("looking up upload workflow: %v", err)
		return ""
	}
	return id
}

// ChecksumError is returned when no checksum has been published for the
// current commit.
type ChecksumError struct {
	Err  *artifact.StatusError
	Hint string
}

func (e *ChecksumError) Error() string {
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ChecksumError) Unwrap() error {
	return e.Err
}
