package files

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"repopack/internal/config"
	"repopack/internal/logging"
)

// ProcessFiles applies the configured transformations to every file. The
// result keeps the order of raw.
func ProcessFiles(ctx context.Context, raw []RawFile, cfg *config.Config) ([]ProcessedFile, error) {
	timer := logging.StartTimer(logging.CategoryFiles, "Process files")
	defer timer.Stop()

	processed := make([]ProcessedFile, len(raw))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range raw {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			processed[i] = ProcessedFile{Path: f.Path, Content: ProcessContent(ctx, f.Path, f.Content, cfg)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("process files: %w", err)
	}
	return processed, nil
}

// ProcessContent transforms one file: comment removal, blank line removal,
// trimming and line numbers, each as configured.
func ProcessContent(ctx context.Context, path, content string, cfg *config.Config) string {
	if cfg.Output.RemoveComments {
		stripped, err := RemoveComments(ctx, path, content)
		if err != nil {
			logging.FilesWarn("Keeping comments in %s: %v", path, err)
		} else {
			content = stripped
		}
	}
	if cfg.Output.RemoveEmptyLines {
		content = removeEmptyLines(content)
	}
	content = strings.TrimSpace(content)
	if cfg.Output.ShowLineNumbers {
		content = addLineNumbers(content)
	}
	return content
}

func removeEmptyLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// addLineNumbers prefixes each line with its right-aligned 1-based number.
func addLineNumbers(content string) string {
	lines := strings.Split(content, "\n")
	width := len(strconv.Itoa(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d: %s", width, i+1, line)
	}
	return b.String()
}
