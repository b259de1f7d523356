package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"repopack/internal/config"
)

// cliOptions holds every action flag. Values only override the config file
// when the flag was set explicitly.
type cliOptions struct {
	output          string
	include         string
	ignore          string
	configPath      string
	topFilesLen     int
	showLineNumbers bool
	style           string
	init            bool
	global          bool
	remote          string
	watch           bool

	aiEnabled   bool
	aiProvider  string
	aiThreshold float64
	aiModel     string
	aiMaxTokens int
	aiTimeout   time.Duration
}

func registerFlags(cmd *cobra.Command, o *cliOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "specify the output file name")
	f.StringVar(&o.include, "include", "", "list of include patterns (comma-separated)")
	f.StringVarP(&o.ignore, "ignore", "i", "", "additional ignore patterns (comma-separated)")
	f.StringVarP(&o.configPath, "config", "c", "", "path to a custom config file")
	f.IntVar(&o.topFilesLen, "top-files-len", 5, "specify the number of top files to display")
	f.BoolVar(&o.showLineNumbers, "output-show-line-numbers", false, "add line numbers to each line in the output")
	f.StringVar(&o.style, "style", "", "specify the output style (plain, xml, markdown)")
	f.BoolVar(&o.init, "init", false, "initialize a new repopack.config.json file")
	f.BoolVar(&o.global, "global", false, "use global configuration (only applicable with --init)")
	f.StringVar(&o.remote, "remote", "", "process a remote Git repository")
	f.BoolVarP(&o.watch, "watch", "w", false, "re-pack whenever files change")

	f.BoolVar(&o.aiEnabled, "ai-enabled", false, "enable AI-powered analysis")
	f.StringVar(&o.aiProvider, "ai-provider", "openai", "AI provider to use (openai or claude)")
	f.Float64Var(&o.aiThreshold, "ai-threshold", 0.7, "relevance threshold for AI analysis (0.0-1.0)")
	f.StringVar(&o.aiModel, "ai-model", "gpt-4o", "specific AI model to use")
	f.IntVar(&o.aiMaxTokens, "ai-max-tokens", 4000, "maximum tokens for AI analysis")
	f.DurationVar(&o.aiTimeout, "ai-timeout", 10*time.Minute, "upper bound for one AI worker run")
}

// applyFlags layers explicitly set flags over cfg.
func applyFlags(flags *pflag.FlagSet, o *cliOptions, cfg *config.Config) error {
	if flags.Changed("output") {
		cfg.Output.FilePath = o.output
	}
	if flags.Changed("include") {
		cfg.Include = splitPatterns(o.include)
	}
	if flags.Changed("ignore") {
		cfg.Ignore.CustomPatterns = append(cfg.Ignore.CustomPatterns, splitPatterns(o.ignore)...)
	}
	if flags.Changed("top-files-len") {
		cfg.Output.TopFilesLength = o.topFilesLen
	}
	if flags.Changed("output-show-line-numbers") {
		cfg.Output.ShowLineNumbers = o.showLineNumbers
	}
	if flags.Changed("style") {
		style := strings.ToLower(o.style)
		if !config.IsValidStyle(style) {
			return fmt.Errorf("invalid style %q: must be one of plain, xml, markdown", o.style)
		}
		cfg.Output.Style = config.OutputStyle(style)
	}

	if flags.Changed("ai-enabled") {
		cfg.AI.Enabled = o.aiEnabled
	}
	if flags.Changed("ai-provider") {
		cfg.AI.Provider = o.aiProvider
	}
	if flags.Changed("ai-threshold") {
		cfg.AI.RelevanceThreshold = o.aiThreshold
	}
	if flags.Changed("ai-model") {
		cfg.AI.ModelName = o.aiModel
	}
	if flags.Changed("ai-max-tokens") {
		cfg.AI.MaxTokens = o.aiMaxTokens
	}
	if flags.Changed("ai-timeout") {
		cfg.AI.Timeout = o.aiTimeout.String()
	}
	return nil
}

// splitPatterns splits a comma-separated flag value, dropping blanks.
func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadConfig merges defaults, config files and flags for a run in cwd.
func loadConfig(flags *pflag.FlagSet, o *cliOptions, cwd string) (*config.Config, error) {
	cfg, err := config.Load(cwd, o.configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(flags, o, cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = verbose
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
