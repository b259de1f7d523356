package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"repopack/internal/logging"
	"repopack/internal/tactile"
)

// cloneTimeout bounds a shallow clone.
const cloneTimeout = 10 * time.Minute

var githubShorthand = regexp.MustCompile(`^[a-zA-Z0-9_-]+/[a-zA-Z0-9_-]+$`)

// newExecutor builds the executor used for git. Tests replace it.
var newExecutor = func() tactile.Executor {
	return tactile.NewDirectExecutor()
}

// runRemote clones a repository into a temp dir, packs it with AI analysis on
// by default, and copies the artifact into cwd.
func runRemote(cmd *cobra.Command, cwd, repoURL string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	executor := newExecutor()

	if !checkGitInstallation(ctx, executor) {
		return fmt.Errorf("git is not installed or not in the system PATH")
	}

	url := formatGitURL(repoURL)
	tempDir, err := os.MkdirTemp("", "repopack-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	logging.CLIDebug("Created temporary directory: %s", tempDir)
	defer cleanupTempDirectory(tempDir)

	fmt.Fprintf(out, "Clone repository: %s to temporary directory. %s\n\n", url, dimStyle.Render("path: "+tempDir))
	sp := newSpinner(out, "Cloning repository...")
	sp.Start()
	if err := cloneRepository(ctx, executor, url, tempDir); err != nil {
		sp.Fail("Failed to clone repository")
		return err
	}
	sp.Succeed("Repository cloned successfully!")
	fmt.Fprintln(out)

	// The cloned tree is the config root; an explicit --config stays relative
	// to where the user ran the command.
	local := opts
	if local.configPath != "" && !filepath.IsAbs(local.configPath) {
		local.configPath = filepath.Join(cwd, local.configPath)
	}
	cfg, err := loadConfig(cmd.Flags(), &local, tempDir)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("ai-enabled") {
		cfg.AI.Enabled = true
	}
	printAISettings(out, cfg)

	result, err := packAndReport(ctx, out, tempDir, cfg)
	if err != nil {
		return err
	}

	if filepath.IsAbs(cfg.OutputFilePath()) {
		return nil
	}
	return copyOutputToDirectory(out, result.OutputPath, filepath.Join(cwd, cfg.OutputFilePath()))
}

// formatGitURL expands owner/repo shorthand and appends .git to bare https
// URLs.
func formatGitURL(url string) string {
	if githubShorthand.MatchString(url) {
		logging.CLIDebug("Formatting GitHub shorthand: %s", url)
		return "https://github.com/" + url + ".git"
	}
	if strings.HasPrefix(url, "https://") && !strings.HasSuffix(url, ".git") {
		logging.CLIDebug("Adding .git to HTTPS URL: %s", url)
		return url + ".git"
	}
	return url
}

func checkGitInstallation(ctx context.Context, executor tactile.Executor) bool {
	result, err := executor.Execute(ctx, tactile.Command{
		Binary:    "git",
		Arguments: []string{"--version"},
	})
	if err != nil || result.IsError() || result.Killed || result.ExitCode != 0 {
		logging.CLIDebug("Git is not available: err=%v", err)
		return false
	}
	return true
}

func cloneRepository(ctx context.Context, executor tactile.Executor, url, directory string) error {
	result, err := executor.Execute(ctx, tactile.Command{
		Binary:    "git",
		Arguments: []string{"clone", "--depth", "1", "--", url, directory},
		Limits:    &tactile.ResourceLimits{TimeoutMs: cloneTimeout.Milliseconds()},
	})
	switch {
	case err != nil:
		return fmt.Errorf("failed to clone repository: %w", err)
	case result.IsError():
		return fmt.Errorf("failed to clone repository: %w", result.Err)
	case result.Killed:
		return fmt.Errorf("failed to clone repository: %s", result.KillReason)
	case result.IsNonZeroExit():
		return fmt.Errorf("failed to clone repository: exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Output()))
	}
	return nil
}

func cleanupTempDirectory(dir string) {
	logging.CLIDebug("Cleaning up temporary directory: %s", dir)
	if err := os.RemoveAll(dir); err != nil {
		logging.Get(logging.CategoryCLI).Warn("Failed to remove %s: %v", dir, err)
	}
}

func copyOutputToDirectory(out io.Writer, src, dst string) error {
	logging.CLIDebug("Copying output file from: %s to: %s", src, dst)
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to copy output file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to copy output file: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to copy output file: %w", err)
	}

	fmt.Fprintln(out, successStyle.Render("\nOutput file created: ")+filepath.Base(dst))
	fmt.Fprintln(out, "Location: "+dimStyle.Render(dst))
	return nil
}
