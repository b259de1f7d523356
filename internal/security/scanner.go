// Package security flags files whose content looks like it contains secrets,
// so they can be left out of a pack.
package security

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"repopack/internal/files"
	"repopack/internal/logging"
)

// SuspiciousFileResult names a flagged file and why it was flagged.
type SuspiciousFileResult struct {
	FilePath string   `json:"filePath"`
	Messages []string `json:"messages"`
}

// Scanner checks file content against a rule set.
type Scanner struct {
	rules []*Rule
}

// NewScanner returns a scanner using rules, or DefaultRules when none are
// given.
func NewScanner(rules ...*Rule) *Scanner {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Scanner{rules: rules}
}

// Check returns one message per matching rule, or nil when content is clean.
func (s *Scanner) Check(content string) []string {
	var messages []string
	for _, r := range s.rules {
		lines := r.match(content)
		if len(lines) == 0 {
			continue
		}
		messages = append(messages, fmt.Sprintf("%s (line %s)", r.Description, joinLines(lines)))
	}
	return messages
}

func joinLines(lines []int) string {
	const shown = 3
	s := ""
	for i, l := range lines {
		if i == shown {
			return s + fmt.Sprintf(", +%d more", len(lines)-shown)
		}
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(l)
	}
	return s
}

// RunSecurityCheck scans raw files with DefaultRules. Results follow the
// order of rawFiles. progress, if non-nil, is called once per file.
func RunSecurityCheck(ctx context.Context, rawFiles []files.RawFile, progress func(string)) ([]SuspiciousFileResult, error) {
	return NewScanner().Run(ctx, rawFiles, progress)
}

// Run scans rawFiles with bounded parallelism.
func (s *Scanner) Run(ctx context.Context, rawFiles []files.RawFile, progress func(string)) ([]SuspiciousFileResult, error) {
	timer := logging.StartTimer(logging.CategorySecurity, "Security check")
	defer timer.Stop()

	slots := make([][]string, len(rawFiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range rawFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = s.Check(f.Content)
			if progress != nil {
				progress(fmt.Sprintf("Running security check... (%d/%d) %s", i+1, len(rawFiles), f.Path))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("security check: %w", err)
	}

	var results []SuspiciousFileResult
	for i, messages := range slots {
		if len(messages) == 0 {
			continue
		}
		logging.SecurityDebug("Suspicious file %s: %v", rawFiles[i].Path, messages)
		results = append(results, SuspiciousFileResult{FilePath: rawFiles[i].Path, Messages: messages})
	}
	return results, nil
}
