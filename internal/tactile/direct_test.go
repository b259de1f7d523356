package tactile

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestDirectExecutor_Execute(t *testing.T) {
	skipWithoutShell(t)
	exec := NewDirectExecutor()

	result, err := exec.Execute(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "echo hello; echo oops >&2"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Equal(t, "hello\n\noops\n", result.Output())
	assert.False(t, result.IsError())
	assert.False(t, result.IsNonZeroExit())
	require.NotNil(t, result.Command)
	assert.Equal(t, int64(30000), result.Command.Limits.TimeoutMs)
}

func TestDirectExecutor_NonZeroExit(t *testing.T) {
	skipWithoutShell(t)
	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "echo broken >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.IsNonZeroExit())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "broken\n", result.Stderr)
}

func TestDirectExecutor_Timeout(t *testing.T) {
	skipWithoutShell(t)
	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "exec sleep 5"},
		Limits:    &ResourceLimits{TimeoutMs: 100},
	})
	require.NoError(t, err)
	assert.True(t, result.Killed)
	assert.Contains(t, result.KillReason, "timeout")
	assert.Less(t, result.Duration, 4*time.Second)
}

func TestDirectExecutor_Canceled(t *testing.T) {
	skipWithoutShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	result, err := NewDirectExecutor().Execute(ctx, Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "exec sleep 5"},
	})
	require.NoError(t, err)
	assert.True(t, result.Killed)
	assert.Equal(t, "context canceled", result.KillReason)
}

func TestDirectExecutor_StartFailure(t *testing.T) {
	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary: "definitely-not-a-real-binary-for-repopack",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.IsError())
	assert.Error(t, result.Err)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, -1, result.ExitCode)
}

func TestDirectExecutor_Validate(t *testing.T) {
	_, err := NewDirectExecutor().Execute(context.Background(), Command{})
	assert.Error(t, err)
}

func TestDirectExecutor_Environment(t *testing.T) {
	skipWithoutShell(t)
	t.Setenv("REPOPACK_TACTILE_PARENT", "inherited")

	t.Run("inherit", func(t *testing.T) {
		result, err := NewDirectExecutor().Execute(context.Background(), Command{
			Binary:      "/bin/sh",
			Arguments:   []string{"-c", `printf "%s|%s" "$REPOPACK_TACTILE_PARENT" "$EXTRA"`},
			Environment: []string{"EXTRA=set"},
		})
		require.NoError(t, err)
		assert.Equal(t, "inherited|set", result.Stdout)
	})

	t.Run("allow list", func(t *testing.T) {
		cfg := DefaultExecutorConfig()
		cfg.InheritEnvironment = false
		result, err := NewDirectExecutorWithConfig(cfg).Execute(context.Background(), Command{
			Binary:    "/bin/sh",
			Arguments: []string{"-c", `printf "%s" "$REPOPACK_TACTILE_PARENT"`},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Stdout)
	})

	t.Run("command overrides host", func(t *testing.T) {
		result, err := NewDirectExecutor().Execute(context.Background(), Command{
			Binary:      "/bin/sh",
			Arguments:   []string{"-c", `printf "%s" "$REPOPACK_TACTILE_PARENT"`},
			Environment: []string{"REPOPACK_TACTILE_PARENT=override"},
		})
		require.NoError(t, err)
		assert.Equal(t, "override", result.Stdout)
	})
}

func TestDirectExecutor_WorkingDirectoryAndStdin(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/marker.txt", []byte("x"), 0o644))

	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:           "/bin/sh",
		Arguments:        []string{"-c", "ls; cat"},
		WorkingDirectory: dir,
		Stdin:            "from stdin",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "marker.txt")
	assert.True(t, strings.HasSuffix(result.Stdout, "from stdin"))
}

func TestDirectExecutor_OutputTruncated(t *testing.T) {
	skipWithoutShell(t)
	result, err := NewDirectExecutor().Execute(context.Background(), Command{
		Binary:    "/bin/sh",
		Arguments: []string{"-c", "printf 0123456789"},
		Limits:    &ResourceLimits{MaxOutputBytes: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "0123", result.Stdout)
	assert.True(t, result.Truncated)
	assert.Equal(t, int64(6), result.TruncatedBytes)
}

func TestExecutorConfig_Merge(t *testing.T) {
	cfg := ExecutorConfig{
		DefaultWorkingDir: "/work",
		DefaultTimeout:    time.Second,
		MaxTimeout:        5 * time.Second,
		MaxOutputBytes:    100,
	}

	merged := cfg.Merge(Command{Binary: "x"})
	assert.Equal(t, "/work", merged.WorkingDirectory)
	assert.Equal(t, int64(1000), merged.Limits.TimeoutMs)
	assert.Equal(t, int64(100), merged.Limits.MaxOutputBytes)

	merged = cfg.Merge(Command{Binary: "x", WorkingDirectory: "/else", Limits: &ResourceLimits{TimeoutMs: 60000}})
	assert.Equal(t, "/else", merged.WorkingDirectory)
	assert.Equal(t, int64(5000), merged.Limits.TimeoutMs)
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, max: 5}

	n, err := lw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = lw.Write([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = lw.Write([]byte("hij"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, "abcde", buf.String())
	assert.True(t, lw.truncated)
	assert.Equal(t, int64(5), lw.discarded)
}

func TestExecutorFunc(t *testing.T) {
	var called Command
	var e Executor = ExecutorFunc(func(ctx context.Context, cmd Command) (*ExecutionResult, error) {
		called = cmd
		return &ExecutionResult{Success: true}, nil
	})

	result, err := e.Execute(context.Background(), Command{Binary: "git", Arguments: []string{"status"}})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "git status", called.CommandString())
}
