package packager

import (
	"context"
	"fmt"
	"runtime"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"repopack/internal/files"
)

type fileMetric struct {
	path       string
	charCount  int
	tokenCount int
}

// computeMetrics counts characters and tokens for every processed file with
// at most limit items in flight. Each item owns one slot, so the aggregate
// does not depend on completion order.
func computeMetrics(ctx context.Context, processed []files.ProcessedFile, counter TokenCounter, limit int, progress *progressSink) ([]fileMetric, error) {
	metrics := make([]fileMetric, len(processed))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range processed {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			metrics[i] = fileMetric{
				path:       f.Path,
				charCount:  utf8.RuneCountInString(f.Content),
				tokenCount: counter.CountTokens(f.Content, f.Path),
			}
			progress.report(fmt.Sprintf("Calculating metrics... (%d/%d) %s", i+1, len(processed), f.Path))

			// Let other items and the progress observer run between files.
			runtime.Gosched()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metrics, nil
}

// aggregate folds per-file metrics into result totals and path maps.
func aggregate(result *PackResult, metrics []fileMetric) {
	result.FileCharCounts = make(map[string]int, len(metrics))
	result.FileTokenCounts = make(map[string]int, len(metrics))
	for _, m := range metrics {
		result.FileCharCounts[m.path] = m.charCount
		result.FileTokenCounts[m.path] = m.tokenCount
	}
	result.TotalFiles = len(metrics)
	for _, c := range result.FileCharCounts {
		result.TotalCharacters += c
	}
	for _, c := range result.FileTokenCounts {
		result.TotalTokens += c
	}
}

func concurrency(opts *Options) int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return max(1, runtime.NumCPU())
}
