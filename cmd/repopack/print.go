package main

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"repopack/internal/config"
	"repopack/internal/packager"
)

// Palette
var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorInfo    = lipgloss.Color("#2196F3")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#6b7280")
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorAccent)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(16)
)

func section(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", lipgloss.Width(title))))
}

func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label+":")+" "+valueStyle.Render(value))
}

// printTopFiles lists the n largest files by token count.
func printTopFiles(w io.Writer, charCounts, tokenCounts map[string]int, n int) {
	if n <= 0 || len(charCounts) == 0 {
		return
	}

	paths := make([]string, 0, len(charCounts))
	for p := range charCounts {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b string) int {
		if c := cmp.Compare(tokenCounts[b], tokenCounts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(paths) > n {
		paths = paths[:n]
	}

	section(w, fmt.Sprintf("📈 Top %d Files by Token Count:", n))
	for i, p := range paths {
		fmt.Fprintf(w, "%d.  %s %s\n", i+1, p,
			dimStyle.Render(fmt.Sprintf("(%s chars, %s tokens)", formatInt(charCounts[p]), formatInt(tokenCounts[p]))))
	}
	fmt.Fprintln(w)
}

// printSecurityCheck reports the suspicious files that were left out.
func printSecurityCheck(w io.Writer, rootDir string, result *packager.PackResult, cfg *config.Config) {
	if !cfg.Security.EnableSecurityCheck {
		return
	}

	section(w, "🔎 Security Check:")
	if len(result.SuspiciousFilesResults) == 0 {
		fmt.Fprintln(w, successStyle.Render("✔ No suspicious files detected."))
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d suspicious file(s) detected and excluded from the output:", len(result.SuspiciousFilesResults))))
	for i, s := range result.SuspiciousFilesResults {
		fmt.Fprintf(w, "%d. %s\n", i+1, displayPath(rootDir, s.FilePath))
		for _, m := range s.Messages {
			fmt.Fprintln(w, dimStyle.Render("   - "+m))
		}
	}
	fmt.Fprintln(w, warnStyle.Render("These files were excluded for security reasons."))
	fmt.Fprintln(w, warnStyle.Render("Please review them and remove any sensitive information."))
	fmt.Fprintln(w)
}

// printAIAnalysis summarises the relevance filter when it ran.
func printAIAnalysis(w io.Writer, result *packager.PackResult, cfg *config.Config) {
	if !cfg.AI.Enabled {
		return
	}

	section(w, "🤖 AI Analysis:")
	a := result.AIAnalysis
	if a == nil {
		fmt.Fprintln(w, warnStyle.Render("AI analysis was skipped; all discovered files were packed. Run with --verbose for details."))
		fmt.Fprintln(w)
		return
	}

	row(w, "Relevant Files", formatInt(len(a.RelevantFiles)))
	row(w, "Excluded Files", formatInt(len(a.ExcludedFiles)))
	if c, ok := a.ProjectContext["confidence"].(float64); ok {
		row(w, "Confidence", fmt.Sprintf("%.1f%%", c*100))
	}
	if purpose, ok := a.ProjectContext["main_purpose"].(string); ok && purpose != "" {
		if r := []rune(purpose); len(r) > 100 {
			purpose = string(r[:100]) + "..."
		}
		row(w, "Purpose", purpose)
	}
	fmt.Fprintln(w)
}

// printAISettings echoes the AI configuration before a run.
func printAISettings(w io.Writer, cfg *config.Config) {
	if !cfg.AI.Enabled {
		return
	}
	section(w, "🤖 AI Analysis Enabled:")
	row(w, "Provider", cfg.AI.Provider)
	row(w, "Model", cfg.AI.ModelName)
	row(w, "Threshold", fmt.Sprintf("%g", cfg.AI.RelevanceThreshold))
	if cfg.AI.APIKey == "" {
		fmt.Fprintln(w, warnStyle.Render(config.CredentialEnvVar+" is not set; AI analysis will be skipped."))
	}
	fmt.Fprintln(w)
}

// printSummary prints the totals block.
func printSummary(w io.Writer, result *packager.PackResult, cfg *config.Config) {
	section(w, "📊 Pack Summary:")
	row(w, "Total Files", formatInt(result.TotalFiles))
	row(w, "Total Chars", formatInt(result.TotalCharacters))
	row(w, "Total Tokens", formatInt(result.TotalTokens))
	row(w, "Output", cfg.OutputFilePath())

	security := "✔ No suspicious files detected"
	if !cfg.Security.EnableSecurityCheck {
		security = "Security check disabled"
	} else if n := len(result.SuspiciousFilesResults); n > 0 {
		security = fmt.Sprintf("%d suspicious file(s) detected and excluded", n)
	}
	row(w, "Security", security)
	fmt.Fprintln(w)
}

func printCompletion(w io.Writer) {
	fmt.Fprintln(w, successStyle.Render("🎉 All Done!"))
	fmt.Fprintln(w, "Your repository has been successfully packed.")
}

// printResult prints everything that follows a successful pack.
func printResult(w io.Writer, rootDir string, result *packager.PackResult, cfg *config.Config) {
	printTopFiles(w, result.FileCharCounts, result.FileTokenCounts, cfg.Output.TopFilesLength)
	printSecurityCheck(w, rootDir, result, cfg)
	printAIAnalysis(w, result, cfg)
	printSummary(w, result, cfg)
	printCompletion(w)
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("✖ Error: ")+err.Error())
	if !verbose {
		fmt.Fprintln(w, dimStyle.Render("For more detailed information, run with the --verbose flag."))
	}
}

// displayPath shows p relative to root when it lives under it.
func displayPath(root, p string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}

// formatInt renders n with thousands separators.
func formatInt(n int) string {
	return humanize.Comma(int64(n))
}
