// Package tactile is the process execution layer: every subprocess repopack
// starts (the AI analysis worker, its capability check, git for remote
// repositories) goes through an Executor so callers get one structured result
// shape and tests can substitute the process boundary.
package tactile

import (
	"context"
	"strings"
	"time"
)

// Executor is the interface for command execution.
type Executor interface {
	// Execute runs a command and returns a comprehensive result.
	// The context can be used for cancellation.
	Execute(ctx context.Context, cmd Command) (*ExecutionResult, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd Command) (*ExecutionResult, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	return f(ctx, cmd)
}

// Command represents a command to be executed.
type Command struct {
	// Binary is the executable to run (e.g., "python3", "git").
	Binary string `json:"binary"`

	// Arguments are the command-line arguments.
	Arguments []string `json:"arguments"`

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the executor's default working directory.
	WorkingDirectory string `json:"working_directory,omitempty"`

	// Environment variables to set (in KEY=VALUE format).
	// Later entries override earlier ones and the inherited environment.
	Environment []string `json:"environment,omitempty"`

	// Stdin provides input to the command's standard input.
	Stdin string `json:"stdin,omitempty"`

	// Limits specifies resource constraints for execution.
	Limits *ResourceLimits `json:"limits,omitempty"`
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// ResourceLimits defines constraints on command execution.
type ResourceLimits struct {
	// TimeoutMs is the maximum execution time in milliseconds.
	// Zero means use the executor's default timeout.
	TimeoutMs int64 `json:"timeout_ms,omitempty"`

	// MaxOutputBytes limits captured stdout and stderr, each.
	// Zero means use the executor's default.
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// ExecutionResult is the comprehensive output of command execution.
type ExecutionResult struct {
	// Success indicates whether the execution infrastructure worked.
	// Note: A command that runs but returns non-zero exit code has Success=true.
	// Success=false means the process could not be started or waited on.
	Success bool `json:"success"`

	// ExitCode is the command's exit code (-1 if not available).
	ExitCode int `json:"exit_code"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// Duration is how long the command ran.
	Duration time.Duration `json:"duration"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when execution completed.
	FinishedAt time.Time `json:"finished_at"`

	// Killed indicates the command was forcibly terminated.
	Killed bool `json:"killed"`

	// KillReason explains why the command was killed.
	KillReason string `json:"kill_reason,omitempty"`

	// Truncated indicates output was truncated due to size limits.
	Truncated bool `json:"truncated"`

	// TruncatedBytes is how many bytes were discarded.
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	// Error contains any infrastructure-level error message.
	Error string `json:"error,omitempty"`

	// Err is the infrastructure error itself, for errors.Is/As.
	Err error `json:"-"`

	// Command is a copy of the command that was executed (for audit).
	Command *Command `json:"command,omitempty"`
}

// IsError returns true if the execution failed (infrastructure error).
func (r *ExecutionResult) IsError() bool {
	return !r.Success || r.Error != ""
}

// IsNonZeroExit returns true if the command ran but returned non-zero.
func (r *ExecutionResult) IsNonZeroExit() bool {
	return r.Success && !r.Killed && r.ExitCode != 0
}

// Output returns Stdout and Stderr joined by a newline when both are present.
func (r *ExecutionResult) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// ExecutorConfig is the configuration for creating executors.
type ExecutorConfig struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string `json:"default_working_dir"`

	// DefaultTimeout is used when no timeout is specified.
	DefaultTimeout time.Duration `json:"default_timeout"`

	// MaxTimeout caps all timeout values (0 = uncapped).
	MaxTimeout time.Duration `json:"max_timeout"`

	// InheritEnvironment passes the whole host environment to the child.
	// When false only AllowedEnvironment is passed through.
	InheritEnvironment bool `json:"inherit_environment"`

	// AllowedEnvironment lists environment variables to pass through.
	AllowedEnvironment []string `json:"allowed_environment"`

	// MaxOutputBytes caps output capture (default 10MB).
	MaxOutputBytes int64 `json:"max_output_bytes"`
}

// DefaultExecutorConfig returns sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultWorkingDir:  "",
		DefaultTimeout:     30 * time.Second,
		MaxTimeout:         0,
		InheritEnvironment: true,
		AllowedEnvironment: []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR", "SYSTEMROOT"},
		MaxOutputBytes:     10 * 1024 * 1024, // 10MB
	}
}

// Merge combines this config with command-specific settings.
// Command settings override config defaults.
func (c ExecutorConfig) Merge(cmd Command) Command {
	result := cmd

	if result.WorkingDirectory == "" {
		result.WorkingDirectory = c.DefaultWorkingDir
	}

	limits := ResourceLimits{}
	if cmd.Limits != nil {
		limits = *cmd.Limits
	}
	if limits.TimeoutMs == 0 {
		limits.TimeoutMs = c.DefaultTimeout.Milliseconds()
	}
	if c.MaxTimeout > 0 && limits.TimeoutMs > c.MaxTimeout.Milliseconds() {
		limits.TimeoutMs = c.MaxTimeout.Milliseconds()
	}
	if limits.MaxOutputBytes == 0 {
		limits.MaxOutputBytes = c.MaxOutputBytes
	}
	result.Limits = &limits

	return result
}
