package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"repopack/internal/logging"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the child
// has been killed.
const waitDelay = 2 * time.Second

// DirectExecutor executes commands directly on the host using os/exec.
type DirectExecutor struct {
	config ExecutorConfig
}

// NewDirectExecutor creates a new direct executor with default config.
func NewDirectExecutor() *DirectExecutor {
	logging.TactileDebug("Creating new DirectExecutor with default config")
	return NewDirectExecutorWithConfig(DefaultExecutorConfig())
}

// NewDirectExecutorWithConfig creates a new direct executor with custom config.
func NewDirectExecutorWithConfig(config ExecutorConfig) *DirectExecutor {
	logging.TactileDebug("Creating DirectExecutor with config: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &DirectExecutor{
		config: config,
	}
}

// Validate checks if a command can be executed.
func (e *DirectExecutor) Validate(cmd Command) error {
	if cmd.Binary == "" {
		return fmt.Errorf("binary is required")
	}
	return nil
}

// Execute runs a command directly on the host.
//
// The returned error is only non-nil for invalid commands. Start failures,
// timeouts and non-zero exits are all reported through the result.
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	timer := logging.StartTimer(logging.CategoryTactile, "Direct command execution")
	defer timer.Stop()

	if err := e.Validate(cmd); err != nil {
		logging.TactileWarn("Command validation failed: %s %v - %v", cmd.Binary, cmd.Arguments, err)
		return nil, err
	}

	cmd = e.config.Merge(cmd)
	timeout := time.Duration(cmd.Limits.TimeoutMs) * time.Millisecond

	logging.TactileDebug("Executing: %s (dir=%s, timeout=%s)",
		cmd.CommandString(), cmd.WorkingDirectory, timeout)

	result := &ExecutionResult{
		ExitCode: -1,
		Command:  &cmd,
	}

	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = e.buildEnvironment(cmd.Environment)
	execCmd.WaitDelay = waitDelay

	if cmd.Stdin != "" {
		logging.TactileDebug("Providing stdin input (%d bytes)", len(cmd.Stdin))
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.Limits.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.Limits.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.TactileWarn("Command output truncated: %d bytes discarded", result.TruncatedBytes)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) && execCmd.ProcessState != nil:
		result.Success = true
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", timeout)
		logging.TactileWarn("Command killed (timeout): %s after %s", cmd.Binary, timeout)
	case errors.Is(execCtx.Err(), context.Canceled) && execCmd.ProcessState != nil:
		result.Success = true
		result.Killed = true
		result.KillReason = "context canceled"
		logging.TactileDebug("Command canceled: %s", cmd.Binary)
	case errors.As(err, &exitErr):
		result.Success = true
		result.ExitCode = exitErr.ExitCode()
		logging.TactileDebug("Command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
	default:
		result.Success = false
		result.Error = err.Error()
		result.Err = err
		logging.TactileError("Command failed: %s - %v", cmd.Binary, err)
		return result, nil
	}

	logging.TactileDebug("Command completed: %s -> exit=%d, duration=%s, stdout=%d bytes",
		cmd.Binary, result.ExitCode, result.Duration, len(result.Stdout))

	return result, nil
}

// buildEnvironment creates the environment variable list.
func (e *DirectExecutor) buildEnvironment(cmdEnv []string) []string {
	var env []string
	if e.config.InheritEnvironment {
		env = os.Environ()
	} else {
		for _, key := range e.config.AllowedEnvironment {
			if val, ok := os.LookupEnv(key); ok {
				env = append(env, key+"="+val)
			}
		}
	}

	// exec.Cmd keeps the last value for duplicate keys.
	return append(env, cmdEnv...)
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.max <= 0 {
		written, err := lw.w.Write(p)
		lw.written += int64(written)
		return written, err
	}

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
