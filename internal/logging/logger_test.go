package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetCore(core)
	t.Cleanup(func() { SetCore(zapcore.NewNopCore()) })
	return logs
}

func TestCategoryFieldAttached(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	PackagerDebug("searching %s", "root")
	AIWarn("worker failed: %v", "boom")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "searching root", entries[0].Message)
	assert.Equal(t, "packager", entries[0].ContextMap()["category"])
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)

	assert.Equal(t, "worker failed: boom", entries[1].Message)
	assert.Equal(t, "ai", entries[1].ContextMap()["category"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestGetCachesPerCategory(t *testing.T) {
	observe(t, zapcore.DebugLevel)
	assert.Same(t, Get(CategoryFiles), Get(CategoryFiles))
	assert.NotSame(t, Get(CategoryFiles), Get(CategoryOutput))
}

func TestWithAddsFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Get(CategoryPackager).With("run_id", "abc").Info("stage %d", 3)

	entries := logs.FilterField(zapcore.Field{Key: "run_id", Type: zapcore.StringType, String: "abc"}).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stage 3", entries[0].Message)
}

func TestInitializeLevels(t *testing.T) {
	t.Cleanup(func() { SetCore(zapcore.NewNopCore()) })

	var buf bytes.Buffer
	require.NoError(t, Initialize(Options{Writer: &buf}))
	FilesDebug("hidden")
	FilesWarn("shown")
	Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")

	buf.Reset()
	require.NoError(t, Initialize(Options{Writer: &buf, Verbose: true, JSON: true}))
	FilesDebug("now visible")
	Sync()
	assert.True(t, strings.Contains(buf.String(), `"msg":"now visible"`), buf.String())
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := StartTimer(CategoryMetrics, "count")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.Greater(t, elapsed, time.Duration(0))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestNopBeforeInitialize(t *testing.T) {
	SetCore(zapcore.NewNopCore())
	assert.NotPanics(t, func() {
		Get(CategoryCLI).Error("dropped %d", 1)
	})
}
