package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"repopack/internal/config"
	"repopack/internal/logging"
)

const initConfigFileName = "repopack.config.json"

const ignoreFileTemplate = `# Add patterns to ignore here, one per line
# Example:
# *.log
# tmp/
`

// initAnswers are the choices collected by --init.
type initAnswers struct {
	FilePath     string
	Style        string
	CreateIgnore bool
}

// Prompt seams; tests replace them.
var (
	stdinIsTerminal = func() bool { return isTerminal(os.Stdin) }
	promptInit      = promptInitHuh
	confirmPrompt   = confirmHuh
)

// runInit writes a starter config (and, locally, a .repopackignore).
func runInit(cmd *cobra.Command, cwd string, global bool) error {
	out := cmd.OutOrStdout()

	dir := cwd
	if global {
		d, err := config.GlobalDir()
		if err != nil {
			return fmt.Errorf("failed to resolve global config directory: %w", err)
		}
		dir = d
	}
	configPath := filepath.Join(dir, initConfigFileName)
	interactive := stdinIsTerminal()

	cfg := config.DefaultConfig()
	answers := initAnswers{
		FilePath:     cfg.OutputFilePath(),
		Style:        string(cfg.Output.Style),
		CreateIgnore: !global,
	}

	write, err := shouldWrite(out, configPath, interactive)
	if err != nil {
		return err
	}
	if write {
		if interactive {
			if answers, err = promptInit(answers, global); err != nil {
				return err
			}
		}
		cfg.Output.FilePath = answers.FilePath
		cfg.Output.Style = config.OutputStyle(answers.Style)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		logging.CLIDebug("Wrote config: %s", configPath)
		fmt.Fprintln(out, successStyle.Render("✔ Config file created: ")+dimStyle.Render(configPath))
	}

	if global || !answers.CreateIgnore {
		return nil
	}
	ignorePath := filepath.Join(cwd, config.IgnoreFileName)
	write, err = shouldWrite(out, ignorePath, interactive)
	if err != nil || !write {
		return err
	}
	if err := os.WriteFile(ignorePath, []byte(ignoreFileTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.IgnoreFileName, err)
	}
	fmt.Fprintln(out, successStyle.Render("✔ Ignore file created: ")+dimStyle.Render(ignorePath))
	return nil
}

// shouldWrite reports whether path may be (over)written. Existing files are
// only replaced after an interactive confirmation.
func shouldWrite(out io.Writer, path string, interactive bool) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !interactive {
		fmt.Fprintln(out, warnStyle.Render("Skipping existing file: ")+path)
		return false, nil
	}
	return confirmPrompt(fmt.Sprintf("%s already exists. Overwrite?", filepath.Base(path)))
}

func promptInitHuh(defaults initAnswers, global bool) (initAnswers, error) {
	a := defaults
	fields := []huh.Field{
		huh.NewInput().
			Title("Output file path").
			Value(&a.FilePath).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("output file path is required")
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Output style").
			Options(
				huh.NewOption("Plain", string(config.StylePlain)),
				huh.NewOption("XML", string(config.StyleXML)),
				huh.NewOption("Markdown", string(config.StyleMarkdown)),
			).
			Value(&a.Style),
	}
	if !global {
		fields = append(fields, huh.NewConfirm().
			Title("Create a " + config.IgnoreFileName + " file?").
			Value(&a.CreateIgnore))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return defaults, fmt.Errorf("init cancelled: %w", err)
	}
	return a, nil
}

func confirmHuh(title string) (bool, error) {
	var ok bool
	if err := huh.NewConfirm().Title(title).Value(&ok).Run(); err != nil {
		return false, fmt.Errorf("init cancelled: %w", err)
	}
	return ok, nil
}
