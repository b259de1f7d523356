// Package ai delegates relevance analysis to an out-of-process worker.
//
// The worker is a Python program (analyze.py) that reads the repository,
// asks the configured model which files matter, and prints exactly one JSON
// document on stdout. Everything the worker prints on stderr is treated as
// diagnostics.
package ai

import (
	"path/filepath"
	"strings"
)

// Result is the document the worker prints on success. RelevantFiles is nil
// when the worker omitted the field. A non-empty Error means the worker gave
// up part way; the remaining fields are whatever it had produced.
type Result struct {
	RelevantFiles  []string       `json:"relevantFiles"`
	ProjectContext map[string]any `json:"projectContext"`
	Error          string         `json:"error,omitempty"`
}

// RelevantSet returns the relevant paths as a set keyed by forward-slash
// relative path.
func (r *Result) RelevantSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.RelevantFiles))
	for _, p := range r.RelevantFiles {
		set[NormalizePath(p)] = struct{}{}
	}
	return set
}

// Confidence returns projectContext.confidence when the worker reported one.
func (r *Result) Confidence() float64 {
	if r.ProjectContext == nil {
		return 0
	}
	switch v := r.ProjectContext["confidence"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// NormalizePath converts a worker reported path to the locator's form.
func NormalizePath(p string) string {
	p = filepath.ToSlash(strings.ReplaceAll(p, `\`, "/"))
	p = strings.TrimPrefix(p, "./")
	return p
}
