package packager

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"repopack/internal/ai"
	"repopack/internal/config"
	"repopack/internal/files"
	"repopack/internal/logging"
	"repopack/internal/output"
	"repopack/internal/security"
	"repopack/internal/tokens"
)

// withDefaults returns a copy of opts with every nil collaborator filled in.
func withDefaults(opts *Options) *Options {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.SearchFiles == nil {
		o.SearchFiles = files.SearchFiles
	}
	if o.AnalyzeRelevance == nil {
		o.AnalyzeRelevance = ai.Analyze
	}
	if o.CollectFiles == nil {
		o.CollectFiles = files.CollectFiles
	}
	if o.RunSecurityCheck == nil {
		o.RunSecurityCheck = security.RunSecurityCheck
	}
	if o.ProcessFiles == nil {
		o.ProcessFiles = files.ProcessFiles
	}
	if o.GenerateOutput == nil {
		o.GenerateOutput = output.GenerateOutput
	}
	if o.WriteOutput == nil {
		o.WriteOutput = output.WriteOutput
	}
	if o.NewTokenCounter == nil {
		o.NewTokenCounter = func() TokenCounter { return tokens.NewCounter(tokens.DefaultEncoding) }
	}
	return &o
}

// Pack runs the full pipeline over rootDir and writes the artifact to the
// path resolved from cfg.Cwd.
//
// cfg is read but never modified. Every fatal failure is returned as a
// *PipelineError. AI failures are logged and the run continues as if AI were
// disabled.
func Pack(ctx context.Context, rootDir string, cfg *config.Config, progress ProgressFunc, opts *Options) (*PackResult, error) {
	o := withDefaults(opts)
	sink := newProgressSink(progress)
	log := logging.Get(logging.CategoryPackager).With("run_id", uuid.NewString())
	start := time.Now()

	log.Debug("Packing %s (style=%s, ai=%t, security=%t)", rootDir, cfg.Output.Style, cfg.AI.Enabled, cfg.Security.EnableSecurityCheck)

	sink.report("Searching for files...")
	filePaths, err := o.SearchFiles(rootDir, cfg)
	if err != nil {
		return nil, &PipelineError{Stage: StageSearch, Err: err}
	}
	log.Debug("Discovered %d files", len(filePaths))

	relevantPaths := filePaths
	var aiAnalysis *AIAnalysis
	if cfg.AI.Enabled {
		sink.report("Running AI analysis...")
		aiAnalysis = runAI(ctx, log, o, rootDir, cfg, filePaths)
		if aiAnalysis != nil {
			relevantPaths = aiAnalysis.RelevantFiles
		}
	}

	sink.report("Collecting files...")
	rawFiles, err := o.CollectFiles(ctx, relevantPaths, rootDir)
	if err != nil {
		return nil, &PipelineError{Stage: StageCollect, Err: err}
	}

	safeRawFiles := rawFiles
	suspicious := []security.SuspiciousFileResult{}
	if cfg.Security.EnableSecurityCheck {
		sink.report("Running security check...")
		found, err := o.RunSecurityCheck(ctx, rawFiles, sink.report)
		if err != nil {
			return nil, &PipelineError{Stage: StageSecurity, Err: err}
		}
		if found != nil {
			suspicious = found
		}
		safeRawFiles = excludeSuspicious(rawFiles, suspicious)
	}
	log.Debug("Safe files: %d, suspicious: %d", len(safeRawFiles), len(suspicious))

	safePaths := make([]string, len(safeRawFiles))
	for i, f := range safeRawFiles {
		safePaths[i] = f.Path
	}

	sink.report("Processing files...")
	processed, err := o.ProcessFiles(ctx, safeRawFiles, cfg)
	if err != nil {
		return nil, &PipelineError{Stage: StageProcess, Err: err}
	}

	sink.report("Generating output...")
	doc, err := o.GenerateOutput(rootDir, cfg, processed, safePaths)
	if err != nil {
		return nil, &PipelineError{Stage: StageGenerate, Err: err}
	}

	sink.report("Writing output file...")
	outputPath, err := resolveOutputPath(cfg)
	if err != nil {
		return nil, &PipelineError{Stage: StageWrite, Err: err}
	}
	log.Debug("Writing output to %s", outputPath)
	if err := o.WriteOutput(outputPath, doc); err != nil {
		return nil, &PipelineError{Stage: StageWrite, Err: err}
	}

	sink.report("Calculating metrics...")
	metrics, err := countWithTokenizer(ctx, log, o, processed, sink)
	if err != nil {
		return nil, &PipelineError{Stage: StageMetrics, Err: err}
	}

	result := &PackResult{
		SuspiciousFilesResults: suspicious,
		AIAnalysis:             aiAnalysis,
		OutputPath:             outputPath,
	}
	aggregate(result, metrics)

	log.Debug("Packed %d files, %d characters, %d tokens in %s",
		result.TotalFiles, result.TotalCharacters, result.TotalTokens, time.Since(start))
	return result, nil
}

// runAI returns nil when analysis fails for any reason; the failure is
// logged and never propagated.
func runAI(ctx context.Context, log *logging.Logger, o *Options, rootDir string, cfg *config.Config, filePaths []string) (analysis *AIAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("AI analysis panicked, proceeding with default processing: %v", r)
			analysis = nil
		}
	}()

	result, err := o.AnalyzeRelevance(ctx, rootDir, cfg)
	if err == nil && result == nil {
		err = errors.New("no analysis result")
	}
	if err != nil {
		if ai.IsFeatureError(err) {
			log.Warn("AI analysis failed, proceeding with default processing: %v", err)
		} else {
			log.Warn("AI analysis failed unexpectedly, proceeding with default processing: %v", err)
		}
		return nil
	}

	switch {
	case result.Error != "":
		log.Warn("AI analysis returned a worker error, proceeding with default processing: %s", result.Error)
		return nil
	case result.RelevantFiles == nil:
		log.Warn("AI analysis returned no relevantFiles, proceeding with default processing")
		return nil
	}

	relevant, excluded := ai.FilterPaths(filePaths, result)
	log.Debug("AI analysis kept %d of %d files", len(relevant), len(filePaths))

	projectContext := result.ProjectContext
	if projectContext == nil {
		projectContext = map[string]any{}
	}
	return &AIAnalysis{
		RelevantFiles:  relevant,
		ExcludedFiles:  excluded,
		ProjectContext: projectContext,
	}
}

// countWithTokenizer owns the run's token counter: it is created here and
// released before returning on every path.
func countWithTokenizer(ctx context.Context, log *logging.Logger, o *Options, processed []files.ProcessedFile, sink *progressSink) ([]fileMetric, error) {
	counter := o.NewTokenCounter()
	defer func() {
		if err := counter.Free(); err != nil {
			log.Warn("Releasing token counter: %v", err)
		}
	}()
	return computeMetrics(ctx, processed, counter, concurrency(o), sink)
}

// excludeSuspicious keeps raw files not named by any result, in order.
func excludeSuspicious(raw []files.RawFile, suspicious []security.SuspiciousFileResult) []files.RawFile {
	if len(suspicious) == 0 {
		return raw
	}
	flagged := make(map[string]struct{}, len(suspicious))
	for _, s := range suspicious {
		flagged[s.FilePath] = struct{}{}
	}
	safe := make([]files.RawFile, 0, len(raw))
	for _, f := range raw {
		if _, ok := flagged[f.Path]; !ok {
			safe = append(safe, f)
		}
	}
	return safe
}

// resolveOutputPath resolves the artifact against cfg.Cwd only.
func resolveOutputPath(cfg *config.Config) (string, error) {
	p := cfg.OutputFilePath()
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if cfg.Cwd == "" {
		return "", errors.New("configuration has no working directory to resolve " + p + " against")
	}
	return cfg.ResolveOutputPath(), nil
}
