package files

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"repopack/internal/logging"
)

// languageFor returns the grammar used for a file extension.
func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage()
	case ".py", ".pyw":
		return python.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".rs":
		return rust.GetLanguage()
	case ".java":
		return java.GetLanguage()
	case ".c", ".h":
		return c.GetLanguage()
	case ".cc", ".cpp", ".cxx", ".hpp", ".hh", ".hxx":
		return cpp.GetLanguage()
	case ".sh", ".bash":
		return bash.GetLanguage()
	case ".css":
		return css.GetLanguage()
	case ".rb":
		return ruby.GetLanguage()
	}
	return nil
}

// isCommentNode covers the node names the supported grammars use.
func isCommentNode(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

type byteRange struct{ start, end uint32 }

// RemoveComments strips comments from content using the grammar selected by
// path's extension. Files in unsupported languages are returned unchanged.
// A leading shebang line is kept.
func RemoveComments(ctx context.Context, path, content string) (string, error) {
	lang := languageFor(path)
	if lang == nil {
		return content, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	src := []byte(content)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return content, err
	}
	defer tree.Close()

	var ranges []byteRange
	collectComments(tree.RootNode(), &ranges)
	if len(ranges) == 0 {
		return content, nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	var b strings.Builder
	b.Grow(len(src))
	var last uint32
	for _, r := range ranges {
		if r.start < last {
			continue
		}
		if r.start == 0 && strings.HasPrefix(content, "#!") {
			continue
		}
		b.Write(trimTrailingBlanks(src[last:r.start]))
		last = r.end
	}
	b.Write(src[last:])

	logging.FilesDebug("Removed %d comments from %s", len(ranges), path)
	return b.String(), nil
}

func collectComments(n *sitter.Node, ranges *[]byteRange) {
	if n == nil {
		return
	}
	if isCommentNode(n) {
		*ranges = append(*ranges, byteRange{n.StartByte(), n.EndByte()})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectComments(n.Child(i), ranges)
	}
}

// trimTrailingBlanks drops spaces and tabs that preceded a removed comment
// on the same line.
func trimTrailingBlanks(b []byte) []byte {
	i := len(b)
	for i > 0 && (b[i-1] == ' ' || b[i-1] == '\t') {
		i--
	}
	return b[:i]
}
