package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moeryomenko/detect-releases/internal/config"
	"github.com/moeryomenko/detect-releases/internal/releases"
	"github.com/moeryomenko/detect-releases/internal/utils"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

var errMissingPRNumber = errors.New("missing PR number")

const usageLine = "Usage: detect-releases <pr-number>"

type options struct {
	root        string
	configPath  string
	diffCommand string
	base        string
	head        string
	verbose     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errMissingPRNumber) {
			utils.NewLoggerTo(stderr, false).Error("%v", err)
		}
		return ExitFailure
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "detect-releases <pr-number>",
		Short: "Detect package releases in a pull request",
		Long: `Detect package releases in a pull request.

Scans the PR diff for version bumps in packages/<name>/package.json and
prints a JSON array of {name, version, changelog} records, where changelog
is the matching "## <version>" section of the package's CHANGELOG.md.

Examples:
  detect-releases 123                      # Releases in PR #123 (via gh pr diff)
  detect-releases --base main --head HEAD  # Releases between two local revisions
  detect-releases 123 --verbose            # Log progress to stderr`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "Project root (default: enclosing git work tree)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default: .detect-releases.{yml,json} in the project root)")
	cmd.Flags().StringVar(&opts.diffCommand, "diff-command", "", "Command printing the PR diff; the PR number is appended (default \"gh pr diff\")")
	cmd.Flags().StringVar(&opts.base, "base", "", "Diff local revisions base..head with go-git instead of the PR diff")
	cmd.Flags().StringVar(&opts.head, "head", "", "Head revision for --base (default HEAD)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *options, args []string) error {
	prNumber := ""
	if len(args) == 1 {
		prNumber = args[0]
	}

	if prNumber == "" && opts.base == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), usageLine)
		return errMissingPRNumber
	}
	if opts.head != "" && opts.base == "" {
		return errors.New("--head requires --base")
	}

	root, cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), opts.verbose || cfg.Verbose)

	var diffs releases.DiffSource
	if opts.base != "" {
		diffs = releases.NewRefDiffSource(root, opts.base, opts.head, logger)
	} else {
		diffs = releases.NewPRDiffSource(root, cfg.DiffCommand, logger)
	}

	detector := releases.NewDetector(
		diffs,
		releases.NewVersionChangeParser(root, cfg.PackagesDir, cfg.ManifestFile, logger),
		releases.NewChangelogReader(root, cfg.ChangelogFile),
		logger,
	)

	found, err := detector.Detect(prNumber)
	if err != nil {
		return err
	}

	logger.Success("Detected %d releases", len(found))
	return releases.WriteReleases(cmd.OutOrStdout(), found)
}

// resolveConfig finds the project root and loads configuration.
// The --root flag wins over the configured root, which wins over the detected one.
func resolveConfig(cmd *cobra.Command, opts *options) (string, *config.Configuration, error) {
	root := opts.root
	if root == "" {
		detected, err := releases.FindProjectRoot("", utils.NewLoggerTo(cmd.ErrOrStderr(), opts.verbose))
		if err != nil {
			return "", nil, err
		}
		root = detected
	}

	cfg, err := config.Load(opts.configPath, root)
	if err != nil {
		return "", nil, err
	}

	if opts.root == "" && cfg.Root != "" {
		root = cfg.Root
	}
	if opts.diffCommand != "" {
		cfg.SetDiffCommand(opts.diffCommand)
	}

	return root, cfg, nil
}
