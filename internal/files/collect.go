package files

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"repopack/internal/logging"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CollectFiles reads paths (relative to rootDir) with bounded parallelism.
// The result keeps the order of paths; binary files are left out. The first
// unreadable file aborts collection with an *IOError.
func CollectFiles(ctx context.Context, paths []string, rootDir string) ([]RawFile, error) {
	timer := logging.StartTimer(logging.CategoryFiles, "Collect files")
	defer timer.Stop()

	slots := make([]*RawFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := readFile(rootDir, rel)
			if err != nil {
				return err
			}
			slots[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]RawFile, 0, len(slots))
	for _, f := range slots {
		if f != nil {
			files = append(files, *f)
		}
	}
	logging.FilesDebug("Collected %d of %d files", len(files), len(paths))
	return files, nil
}

// readFile returns nil for binary content.
func readFile(rootDir, rel string) (*RawFile, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, &IOError{Path: rel, Err: err}
	}
	if isBinary(data) {
		logging.FilesDebug("Skipping binary file %s", rel)
		return nil, nil
	}
	return &RawFile{Path: rel, Content: decode(data)}, nil
}

// isBinary reports whether the head of data contains a NUL byte.
func isBinary(data []byte) bool {
	head := data
	if len(head) > binarySniffLen {
		head = head[:binarySniffLen]
	}
	return bytes.IndexByte(head, 0) != -1
}

// decode strips a UTF-8 BOM and replaces invalid sequences.
func decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
