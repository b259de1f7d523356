package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"repopack/internal/config"
	"repopack/internal/logging"
	"repopack/internal/tactile"
)

const (
	// EntryScript is the worker entry point inside the extension directory.
	EntryScript = "analyze.py"
	// ExtensionDirName is looked up next to the executable when no
	// extension path is configured.
	ExtensionDirName = "ai-extension"

	defaultRelevanceThreshold = 0.7
	defaultMaxTokens          = 4000
	defaultModelName          = "gpt-4o"

	credentialPrefix    = "sk-"
	credentialMinLength = 20

	checkTimeout = 30 * time.Second
)

// placeholderCredentials are values shipped in example .env files.
var placeholderCredentials = []string{"your-key", "exampleAPIkey"}

// Bridge runs the relevance worker. A Bridge holds no per-request state and
// may be reused.
type Bridge struct {
	pythonPath    string
	extensionPath string
	apiKey        string
	timeout       time.Duration
	executor      tactile.Executor
}

// NewBridge creates a bridge from the merged configuration. The credential is
// taken from cfg.AI.APIKey; the process environment is never consulted here.
func NewBridge(cfg *config.Config, executor tactile.Executor) *Bridge {
	if executor == nil {
		executor = tactile.NewDirectExecutor()
	}
	pythonPath := cfg.AI.PythonPath
	if pythonPath == "" {
		pythonPath = "python3"
	}
	extensionPath := cfg.AI.ExtensionPath
	if extensionPath == "" {
		extensionPath = defaultExtensionPath()
	}
	return &Bridge{
		pythonPath:    pythonPath,
		extensionPath: extensionPath,
		apiKey:        cfg.AI.APIKey,
		timeout:       cfg.GetAITimeout(),
		executor:      executor,
	}
}

// defaultExtensionPath returns <dir of executable>/ai-extension.
func defaultExtensionPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ExtensionDirName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), ExtensionDirName)
}

// ScriptPath returns the worker entry script path.
func (b *Bridge) ScriptPath() string {
	return filepath.Join(b.extensionPath, EntryScript)
}

// checkCredential validates presence, placeholder values and shape, in that
// order.
func (b *Bridge) checkCredential() error {
	logging.AIDebug("API key status: %s", presence(b.apiKey))

	if b.apiKey == "" {
		return &ConfigurationError{Message: config.CredentialEnvVar + " is not set; export it or add it to your .env file"}
	}
	for _, placeholder := range placeholderCredentials {
		if b.apiKey == placeholder {
			return &ConfigurationError{Message: config.CredentialEnvVar + " still holds the example value; replace it with your actual API key"}
		}
	}
	if !strings.HasPrefix(b.apiKey, credentialPrefix) || len(b.apiKey) < credentialMinLength {
		return &ConfigurationError{Message: config.CredentialEnvVar + " appears to be invalid; check your API key format"}
	}
	return nil
}

func presence(s string) string {
	if s == "" {
		return "missing"
	}
	return "present"
}

// checkCapability checks that the interpreter can import the provider library.
func (b *Bridge) checkCapability(ctx context.Context) error {
	result, err := b.executor.Execute(ctx, tactile.Command{
		Binary:    b.pythonPath,
		Arguments: []string{"-c", "import openai"},
		Limits:    &tactile.ResourceLimits{TimeoutMs: checkTimeout.Milliseconds()},
	})
	if err != nil {
		return &DependencyError{Message: "capability check could not run", Err: err}
	}
	if !result.Success {
		return &DependencyError{
			Message: fmt.Sprintf("%s could not be started", b.pythonPath),
			Err:     result.Err,
		}
	}
	if result.Killed || result.ExitCode != 0 {
		return &DependencyError{
			Message: "required Python packages are not installed; install the openai package",
			Stderr:  result.Stderr,
		}
	}
	return nil
}

// checkScript ensures the worker entry script exists.
func (b *Bridge) checkScript() error {
	script := b.ScriptPath()
	info, err := os.Stat(script)
	if err != nil {
		return &ConfigurationError{Message: "AI analysis script not found at " + script, Err: err}
	}
	if info.IsDir() {
		return &ConfigurationError{Message: "AI analysis script is a directory: " + script}
	}
	logging.AIDebug("Found %s at %s", EntryScript, script)
	return nil
}

// Preflight runs every check that must pass before the worker is started.
func (b *Bridge) Preflight(ctx context.Context) error {
	if err := b.checkCredential(); err != nil {
		return err
	}
	if err := b.checkCapability(ctx); err != nil {
		return err
	}
	return b.checkScript()
}

// CheckCapabilities reports whether analysis could run at all.
func (b *Bridge) CheckCapabilities(ctx context.Context) bool {
	if err := b.Preflight(ctx); err != nil {
		logging.AIDebug("AI capabilities check failed: %v", err)
		return false
	}
	return true
}

// workerPayload is the --config document: the merged configuration with the
// analysis defaults lifted to the top level.
type workerPayload struct {
	*config.Config
	RelevanceThreshold float64 `json:"relevanceThreshold"`
	MaxTokens          int     `json:"maxTokens"`
	ModelName          string  `json:"modelName"`
}

func buildPayload(cfg *config.Config) ([]byte, error) {
	p := workerPayload{
		Config:             cfg,
		RelevanceThreshold: cfg.AI.RelevanceThreshold,
		MaxTokens:          cfg.AI.MaxTokens,
		ModelName:          cfg.AI.ModelName,
	}
	if p.RelevanceThreshold <= 0 {
		p.RelevanceThreshold = defaultRelevanceThreshold
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	if p.ModelName == "" {
		p.ModelName = defaultModelName
	}
	return json.Marshal(p)
}

// AnalyzeRepository runs one worker invocation against repoPath.
//
// All failures are returned as *ConfigurationError, *DependencyError or
// *AnalysisError. A worker that exits 0 with a valid document is a success
// even when the document carries an error field; Result.Error is left for
// the caller to act on.
func (b *Bridge) AnalyzeRepository(ctx context.Context, repoPath string, cfg *config.Config) (*Result, error) {
	start := time.Now()

	if err := b.Preflight(ctx); err != nil {
		logging.AIDebug("AI preflight failed: %v", err)
		return nil, err
	}

	payload, err := buildPayload(cfg)
	if err != nil {
		return nil, &ConfigurationError{Message: "cannot encode worker configuration", Err: err}
	}

	logging.AIDebug("Starting AI analysis: extension=%s repo=%s timeout=%s", b.extensionPath, repoPath, b.timeout)

	result, err := b.executor.Execute(ctx, tactile.Command{
		Binary:    b.pythonPath,
		Arguments: []string{b.ScriptPath(), repoPath, "--config", string(payload)},
		Environment: []string{
			"PYTHONPATH=" + b.extensionPath,
			"PYTHONUNBUFFERED=1",
			config.CredentialEnvVar + "=" + b.apiKey,
		},
		Limits: &tactile.ResourceLimits{TimeoutMs: b.timeout.Milliseconds()},
	})
	if err != nil {
		return nil, &AnalysisError{Message: "worker command rejected", ExitCode: -1, Err: err}
	}

	if result.Stderr != "" {
		logging.AIDebug("AI stderr: %s", strings.TrimSpace(result.Stderr))
	}

	analysis, err := classify(result)
	if err != nil {
		logging.AIDebug("AI analysis failed after %s: %v", time.Since(start), err)
		return nil, err
	}

	if analysis.Error != "" {
		logging.AIDebug("AI worker reported: %s", analysis.Error)
	}
	logging.AIDebug("AI analysis metrics: relevantFiles=%d averageConfidence=%.2f processingTime=%s",
		len(analysis.RelevantFiles), analysis.Confidence(), time.Since(start))
	return analysis, nil
}

// classify turns an execution result into a Result or an AnalysisError.
func classify(result *tactile.ExecutionResult) (*Result, error) {
	switch {
	case !result.Success:
		return nil, &AnalysisError{
			Message:  "failed to start AI analysis",
			ExitCode: -1,
			Err:      result.Err,
		}
	case result.Killed:
		return nil, &AnalysisError{
			Message:  "worker killed: " + result.KillReason,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Output:   result.Stdout,
		}
	case result.IsNonZeroExit():
		return nil, &AnalysisError{
			Message:  fmt.Sprintf("worker exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)),
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Output:   result.Stdout,
		}
	}

	analysis, err := parseResult([]byte(result.Stdout))
	if err != nil {
		msg := "failed to parse AI analysis result"
		if result.Truncated {
			msg += " (output truncated)"
		}
		logging.AIDebug("Unparsable AI output: %q", result.Stdout)
		return nil, &AnalysisError{Message: msg, Stderr: result.Stderr, Output: result.Stdout, Err: err}
	}
	return analysis, nil
}

// parseResult decodes exactly one JSON object from out.
func parseResult(out []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(out))
	var analysis Result
	if err := dec.Decode(&analysis); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after result document")
	}
	if analysis.ProjectContext == nil {
		analysis.ProjectContext = map[string]any{}
	}
	return &analysis, nil
}
