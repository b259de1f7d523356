// Package output renders processed files into the single pack document and
// writes it to disk.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"repopack/internal/config"
	"repopack/internal/files"
	"repopack/internal/logging"
)

// now is replaced in tests for a stable header.
var now = time.Now

// renderData is what the style templates see.
type renderData struct {
	Header      string
	Purpose     string
	Usage       string
	Notes       string
	Toggles     string
	UserHeader  string
	Tree        string
	Files       []files.ProcessedFile
	Instruction string
}

var funcs = template.FuncMap{
	"sep":     func() string { return plainSeparator },
	"longSep": func() string { return plainLongSeparator },
	"attr":    escapeAttr,
	"fence":   fenceFor,
	"lang":    languageHint,
}

var templates = map[config.OutputStyle]*template.Template{
	config.StylePlain:    template.Must(template.New("plain").Funcs(funcs).Parse(plainTemplate)),
	config.StyleXML:      template.Must(template.New("xml").Funcs(funcs).Parse(xmlTemplate)),
	config.StyleMarkdown: template.Must(template.New("markdown").Funcs(funcs).Parse(markdownTemplate)),
}

// GenerateOutput renders processed files in the configured style. paths is
// the full list of packed paths used for the directory tree.
func GenerateOutput(rootDir string, cfg *config.Config, processed []files.ProcessedFile, paths []string) (string, error) {
	timer := logging.StartTimer(logging.CategoryOutput, "Generate output")
	defer timer.Stop()

	style := cfg.Output.Style
	if style == "" {
		style = config.StylePlain
	}
	tmpl, ok := templates[style]
	if !ok {
		return "", fmt.Errorf("unknown output style %q", style)
	}

	instruction, err := readInstruction(cfg)
	if err != nil {
		return "", err
	}

	data := renderData{
		Header: fmt.Sprintf("This file is a merged representation of the entire codebase, combining all repository files into a single document.\nGenerated by Repopack on: %s",
			now().Format(time.RFC3339)),
		Purpose:     summaryPurpose,
		Usage:       summaryUsage,
		Notes:       summaryNotes,
		Toggles:     toggleNotes(cfg),
		UserHeader:  strings.TrimSpace(cfg.Output.HeaderText),
		Tree:        BuildTree(paths),
		Files:       processed,
		Instruction: instruction,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s output: %w", style, err)
	}
	logging.OutputDebug("Rendered %s output for %s: %d files, %d bytes", style, rootDir, len(processed), buf.Len())
	return buf.String(), nil
}

// WriteOutput writes the document, replacing any existing file.
func WriteOutput(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logging.OutputDebug("Wrote %d bytes to %s", len(content), path)
	return nil
}

// readInstruction loads output.instructionFilePath relative to cwd.
func readInstruction(cfg *config.Config) (string, error) {
	p := cfg.Output.InstructionFilePath
	if p == "" {
		return "", nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.Cwd, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read instruction file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func toggleNotes(cfg *config.Config) string {
	var b strings.Builder
	if cfg.Output.RemoveComments {
		b.WriteString("- Code comments have been removed.\n")
	}
	if cfg.Output.RemoveEmptyLines {
		b.WriteString("- Empty lines have been removed.\n")
	}
	if cfg.Output.ShowLineNumbers {
		b.WriteString("- Line numbers have been added to the beginning of each line.\n")
	}
	return b.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// fenceFor returns a backtick fence longer than any run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

var languageHints = map[string]string{
	".go": "go", ".py": "python", ".js": "javascript", ".jsx": "jsx", ".mjs": "javascript",
	".ts": "typescript", ".tsx": "tsx", ".rs": "rust", ".java": "java", ".kt": "kotlin",
	".c": "c", ".h": "c", ".cc": "cpp", ".cpp": "cpp", ".hpp": "cpp", ".cs": "csharp",
	".rb": "ruby", ".php": "php", ".swift": "swift", ".sh": "bash", ".bash": "bash",
	".zsh": "zsh", ".ps1": "powershell", ".sql": "sql", ".html": "html", ".css": "css",
	".scss": "scss", ".json": "json", ".yaml": "yaml", ".yml": "yaml", ".toml": "toml",
	".xml": "xml", ".md": "markdown", ".vue": "vue", ".svelte": "svelte", ".lua": "lua",
	".dockerfile": "dockerfile", ".proto": "protobuf", ".tf": "hcl",
}

// languageHint picks a fence info string from the file extension.
func languageHint(path string) string {
	if strings.EqualFold(filepath.Base(path), "Dockerfile") {
		return "dockerfile"
	}
	return languageHints[strings.ToLower(filepath.Ext(path))]
}
