package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/oxidecomputer/bump-omicron/internal/bump"
	"github.com/oxidecomputer/bump-omicron/internal/config"
	"github.com/oxidecomputer/bump-omicron/internal/defaults"
	pkgversion "github.com/oxidecomputer/bump-omicron/internal/version"
	"github.com/spf13/cobra"
)

// version is set by ldflags during release builds.
// When empty (default), falls back to the source constant in internal/version.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.Version
}

type bumpOptions struct {
	dryRun     bool
	message    string
	push       bool
	autoMerge  bool
	verbose    bool
	configPath string
	dir        string
}

func NewRootCommand() *cobra.Command {
	return newRootCommandWithDeps(nil)
}

// newRootCommandWithDeps builds the command; nil deps means the real git, gh,
// and HTTP implementations.
func newRootCommandWithDeps(deps *bump.Deps) *cobra.Command {
	opts := &bumpOptions{}

	cmd := &cobra.Command{
		Use:   "bump-omicron",
		Short: "Pin the current console build in Omicron and open a PR",
		Long:  defaults.Help(),
		Example: `  # Show the new tools/console_version without changing anything
  bump-omicron --dry-run

  # Open the PR with a note in the title, push the branch, and auto-merge
  bump-omicron -m "new instance page" --push --auto-merge`,
		Version:      getVersion(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, opts, deps)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Print the new version file without creating a PR")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Add message to PR title: 'Bump console to latest main (<msg>)'")
	cmd.Flags().BoolVar(&opts.push, "push", false, "Push the new branch to the remote before creating the PR")
	cmd.Flags().BoolVar(&opts.autoMerge, "auto-merge", false, "Set the PR to squash-merge when CI passes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every command that is run")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: "+config.ConfigFileName+" in the console checkout or a parent)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Console checkout (default: current directory)")

	return cmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

func runBump(cmd *cobra.Command, opts *bumpOptions, deps *bump.Deps) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	ctx := clog.WithLogger(cmd.Context(), logger)

	dir := opts.dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	cfg, err := loadConfig(opts.configPath, dir)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(ctx); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	d := bump.DefaultDeps(cmd.OutOrStdout())
	if deps != nil {
		d = *deps
	}

	return bump.New(cfg, dir, d).Run(ctx, bump.Options{
		DryRun:    opts.dryRun,
		Message:   opts.message,
		Push:      opts.push,
		AutoMerge: opts.autoMerge,
	})
}

func loadConfig(path, dir string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadFromDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
