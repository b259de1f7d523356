package ai

import (
	"context"

	"repopack/internal/config"
)

// Analyze runs one analysis of rootDir with a bridge built from cfg.
func Analyze(ctx context.Context, rootDir string, cfg *config.Config) (*Result, error) {
	return NewBridge(cfg, nil).AnalyzeRepository(ctx, rootDir, cfg)
}

// FilterPaths splits discovered paths into those the worker reported as
// relevant and the rest. Both keep the order of paths. Relevant entries that
// were never discovered are ignored.
func FilterPaths(paths []string, result *Result) (relevant, excluded []string) {
	set := result.RelevantSet()
	relevant = make([]string, 0, len(set))
	excluded = make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := set[p]; ok {
			relevant = append(relevant, p)
		} else {
			excluded = append(excluded, p)
		}
	}
	return relevant, excluded
}
