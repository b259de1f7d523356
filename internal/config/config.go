// Package config holds the repopack configuration: defaults, the on-disk
// config file formats (JSON and YAML), environment overrides and validation.
//
// A *Config passed to the packager is treated as an immutable snapshot for
// the duration of a run.
package config

import (
	"path/filepath"
	"time"
)

// OutputStyle selects the artifact format.
type OutputStyle string

const (
	StylePlain    OutputStyle = "plain"
	StyleXML      OutputStyle = "xml"
	StyleMarkdown OutputStyle = "markdown"
)

// DefaultFilePaths maps each style to its default artifact name.
var DefaultFilePaths = map[OutputStyle]string{
	StylePlain:    "repopack-output.txt",
	StyleXML:      "repopack-output.xml",
	StyleMarkdown: "repopack-output.md",
}

// Config file names, searched in order.
var ConfigFileNames = []string{
	"repopack.config.json",
	"repopack.config.yaml",
	"repopack.config.yml",
}

const (
	// IgnoreFileName holds repopack-specific ignore rules (gitignore syntax).
	IgnoreFileName = ".repopackignore"

	// CredentialEnvVar gates all AI functionality.
	CredentialEnvVar = "OPENAI_API_KEY"
)

// Config is the merged configuration for one invocation.
type Config struct {
	Output   OutputConfig   `json:"output" yaml:"output"`
	Include  []string       `json:"include" yaml:"include"`
	Ignore   IgnoreConfig   `json:"ignore" yaml:"ignore"`
	Security SecurityConfig `json:"security" yaml:"security"`
	AI       AIConfig       `json:"ai" yaml:"ai"`

	// Cwd is the directory output paths are resolved against. It is set by
	// the caller, never read from a config file.
	Cwd string `json:"cwd" yaml:"-"`

	// Verbose mirrors the --verbose flag.
	Verbose bool `json:"verbose,omitempty" yaml:"-"`
}

// OutputConfig controls the shape of the artifact.
type OutputConfig struct {
	FilePath            string      `json:"filePath,omitempty" yaml:"filePath,omitempty"`
	Style               OutputStyle `json:"style" yaml:"style" validate:"oneof=plain xml markdown"`
	HeaderText          string      `json:"headerText,omitempty" yaml:"headerText,omitempty"`
	InstructionFilePath string      `json:"instructionFilePath,omitempty" yaml:"instructionFilePath,omitempty"`
	RemoveComments      bool        `json:"removeComments" yaml:"removeComments"`
	RemoveEmptyLines    bool        `json:"removeEmptyLines" yaml:"removeEmptyLines"`
	TopFilesLength      int         `json:"topFilesLength" yaml:"topFilesLength" validate:"gte=0"`
	ShowLineNumbers     bool        `json:"showLineNumbers" yaml:"showLineNumbers"`
}

// IgnoreConfig controls which files are excluded from discovery.
type IgnoreConfig struct {
	UseGitignore       bool     `json:"useGitignore" yaml:"useGitignore"`
	UseDefaultPatterns bool     `json:"useDefaultPatterns" yaml:"useDefaultPatterns"`
	CustomPatterns     []string `json:"customPatterns" yaml:"customPatterns"`
}

// SecurityConfig toggles suspicious-content screening.
type SecurityConfig struct {
	EnableSecurityCheck bool `json:"enableSecurityCheck" yaml:"enableSecurityCheck"`
}

// AIConfig configures the optional relevance analysis.
type AIConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	Provider           string  `json:"provider" yaml:"provider" validate:"oneof=openai claude"`
	RelevanceThreshold float64 `json:"relevanceThreshold" yaml:"relevanceThreshold" validate:"gte=0,lte=1"`
	MaxTokens          int     `json:"maxTokens" yaml:"maxTokens" validate:"gt=0"`
	ModelName          string  `json:"modelName" yaml:"modelName" validate:"required"`

	// PythonPath is the interpreter used to run the worker.
	PythonPath string `json:"pythonPath,omitempty" yaml:"pythonPath,omitempty"`
	// ExtensionPath is the directory containing the worker entry script.
	ExtensionPath string `json:"extensionPath,omitempty" yaml:"extensionPath,omitempty"`
	// Timeout bounds the worker round trip (Go duration syntax).
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// APIKey is resolved once from the environment at startup.
	APIKey string `json:"-" yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Style:          StylePlain,
			TopFilesLength: 5,
		},
		Include: []string{},
		Ignore: IgnoreConfig{
			UseGitignore:       true,
			UseDefaultPatterns: true,
			CustomPatterns:     []string{},
		},
		Security: SecurityConfig{
			EnableSecurityCheck: true,
		},
		AI: AIConfig{
			Enabled:            false,
			Provider:           "openai",
			RelevanceThreshold: 0.7,
			MaxTokens:          4000,
			ModelName:          "gpt-4o",
			PythonPath:         "python3",
			Timeout:            "10m",
		},
	}
}

// Clone returns a deep copy so callers can derive a new snapshot without
// touching the original.
func (c *Config) Clone() *Config {
	out := *c
	out.Include = append([]string(nil), c.Include...)
	out.Ignore.CustomPatterns = append([]string(nil), c.Ignore.CustomPatterns...)
	return &out
}

// OutputFilePath returns the artifact path, defaulting by style.
func (c *Config) OutputFilePath() string {
	if c.Output.FilePath != "" {
		return c.Output.FilePath
	}
	if p, ok := DefaultFilePaths[c.Output.Style]; ok {
		return p
	}
	return DefaultFilePaths[StylePlain]
}

// ResolveOutputPath resolves the artifact path against Cwd.
func (c *Config) ResolveOutputPath() string {
	p := c.OutputFilePath()
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Cwd, p)
}

// GetAITimeout returns the AI round-trip timeout as a duration.
func (c *Config) GetAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}
