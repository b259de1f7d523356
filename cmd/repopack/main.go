// Package main implements the repopack CLI.
//
// repopack packs a repository into a single AI-friendly file. The default
// action packs a local directory; --remote clones a repository first;
// --init writes a starter config; --watch keeps re-packing on changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"repopack/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.2.0"

var (
	// Global flags
	verbose bool

	// Action flags
	opts cliOptions
)

// rootCmd is the single repopack command; actions are selected by flags.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repopack [directory]",
		Short:   "Pack your repository into a single AI-friendly file",
		Version: version,
		Long: `Repopack walks a directory, filters it through ignore rules and an optional
AI relevance pass, screens contents for secrets, and writes one artifact
(plain, xml or markdown) with per-file token and character counts.

Set OPENAI_API_KEY (environment or .env) and pass --ai-enabled to let the
Python worker in ai-extension/ pick the relevant files.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Initialize(logging.Options{Verbose: verbose}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logging.BootDebug("repopack %s starting", version)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: runRoot,
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging for detailed output")
	registerFlags(cmd, &opts)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// runRoot dispatches to the init, remote or default action.
func runRoot(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("\n📦 Repopack v%s\n", version)))

	switch {
	case opts.init:
		return runInit(cmd, cwd, opts.global)
	case opts.remote != "":
		return runRemote(cmd, cwd, opts.remote)
	}

	directory := "."
	if len(args) > 0 {
		directory = args[0]
	}
	return runDefault(cmd, cwd, directory)
}
