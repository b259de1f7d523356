// Package packager runs the pack pipeline: discovery, optional AI relevance
// filtering, collection, optional security screening, transformation,
// rendering, writing and metrics.
//
// Stages run strictly one after another. The metrics stage fans out under
// Options.Concurrency.
package packager

import (
	"context"
	"fmt"

	"repopack/internal/ai"
	"repopack/internal/config"
	"repopack/internal/files"
	"repopack/internal/security"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageSearch   Stage = "search"
	StageAI       Stage = "ai"
	StageCollect  Stage = "collect"
	StageSecurity Stage = "security"
	StageProcess  Stage = "process"
	StageGenerate Stage = "generate"
	StageWrite    Stage = "write"
	StageMetrics  Stage = "metrics"
)

// PipelineError is returned for any fatal stage failure. No partial result
// accompanies it.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// ProgressFunc receives human readable progress messages. It must not block.
type ProgressFunc func(message string)

// TokenCounter is the per-run tokenizer. Free is called exactly once when the
// run ends.
type TokenCounter interface {
	CountTokens(content, filePath string) int
	Free() error
}

// Options replaces pipeline collaborators and tunes the metrics stage. Nil
// fields use the production implementation.
type Options struct {
	// Concurrency bounds in-flight metric work items. Zero means
	// runtime.NumCPU().
	Concurrency int

	SearchFiles      func(rootDir string, cfg *config.Config) ([]string, error)
	AnalyzeRelevance func(ctx context.Context, rootDir string, cfg *config.Config) (*ai.Result, error)
	CollectFiles     func(ctx context.Context, paths []string, rootDir string) ([]files.RawFile, error)
	RunSecurityCheck func(ctx context.Context, raw []files.RawFile, progress func(string)) ([]security.SuspiciousFileResult, error)
	ProcessFiles     func(ctx context.Context, raw []files.RawFile, cfg *config.Config) ([]files.ProcessedFile, error)
	GenerateOutput   func(rootDir string, cfg *config.Config, processed []files.ProcessedFile, paths []string) (string, error)
	WriteOutput      func(path, content string) error
	NewTokenCounter  func() TokenCounter
}

// AIAnalysis summarises a successful relevance analysis.
type AIAnalysis struct {
	// RelevantFiles are the discovered paths the worker kept, in discovery
	// order.
	RelevantFiles []string `json:"relevantFiles"`
	// ExcludedFiles are the discovered paths the worker did not keep.
	ExcludedFiles  []string       `json:"excludedFiles"`
	ProjectContext map[string]any `json:"projectContext"`
}

// PackResult is the outcome of a successful run.
type PackResult struct {
	TotalFiles             int                             `json:"totalFiles"`
	TotalCharacters        int                             `json:"totalCharacters"`
	TotalTokens            int                             `json:"totalTokens"`
	FileCharCounts         map[string]int                  `json:"fileCharCounts"`
	FileTokenCounts        map[string]int                  `json:"fileTokenCounts"`
	SuspiciousFilesResults []security.SuspiciousFileResult `json:"suspiciousFilesResults"`
	AIAnalysis             *AIAnalysis                     `json:"aiAnalysis,omitempty"`
	// OutputPath is where the artifact was written.
	OutputPath string `json:"outputPath"`
}
