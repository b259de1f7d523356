package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"repopack/internal/config"
	"repopack/internal/logging"
	"repopack/internal/packager"
	"repopack/internal/watch"
)

// packFunc runs the pipeline. Tests replace it.
var packFunc = packager.Pack

// runDefault packs a local directory and, with --watch, keeps re-packing.
func runDefault(cmd *cobra.Command, cwd, directory string) error {
	cfg, err := loadConfig(cmd.Flags(), &opts, cwd)
	if err != nil {
		return err
	}

	rootDir := directory
	if !filepath.IsAbs(rootDir) {
		rootDir = filepath.Join(cwd, rootDir)
	}
	logging.CLIDebug("Packing %s (style=%s, output=%s)", rootDir, cfg.Output.Style, cfg.OutputFilePath())

	out := cmd.OutOrStdout()
	printAISettings(out, cfg)

	result, err := packAndReport(cmd.Context(), out, rootDir, cfg)
	if err != nil {
		return err
	}

	if !opts.watch {
		return nil
	}
	reload := func() (*config.Config, error) {
		return loadConfig(cmd.Flags(), &opts, cwd)
	}
	return watchAndRepack(cmd.Context(), out, cmd.ErrOrStderr(), rootDir, result.OutputPath, cfg, reload)
}

// packAndReport runs one pack behind a spinner and prints the summary.
func packAndReport(ctx context.Context, out io.Writer, rootDir string, cfg *config.Config) (*packager.PackResult, error) {
	sp := newSpinner(out, "Packing files...")
	sp.Start()

	result, err := packFunc(ctx, rootDir, cfg, sp.Update, nil)
	if err != nil {
		sp.Fail("Error during packing")
		return nil, err
	}
	sp.Succeed("Packing completed successfully!")
	fmt.Fprintln(out)

	printResult(out, rootDir, result, cfg)
	return result, nil
}

// watchAndRepack re-packs after each settled batch of changes until ctx is
// cancelled. The artifact itself never triggers a run. A batch touching a
// repopack.config.* file reloads the config first.
func watchAndRepack(ctx context.Context, out, errOut io.Writer, rootDir, outputPath string, cfg *config.Config, reload func() (*config.Config, error)) error {
	outputRel := ""
	if rel, err := filepath.Rel(rootDir, outputPath); err == nil {
		outputRel = filepath.ToSlash(rel)
	}

	w, err := watch.New(rootDir, watch.Options{
		Ignore: func(rel string) bool {
			return rel == outputRel
		},
		OnChange: func(ctx context.Context, paths []string) {
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("\n🔄 %d change(s) detected, re-packing...", len(paths))))
			if slices.ContainsFunc(paths, isConfigFile) {
				next, err := reload()
				if err != nil {
					printError(errOut, err)
					return
				}
				cfg = next
			}
			if _, err := packAndReport(ctx, out, rootDir, cfg); err != nil && ctx.Err() == nil {
				printError(errOut, err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintln(out, dimStyle.Render("\n👀 Watching for changes (Ctrl+C to stop)..."))
	return w.Run(ctx)
}

func isConfigFile(rel string) bool {
	return slices.Contains(config.ConfigFileNames, filepath.Base(rel))
}
