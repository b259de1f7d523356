package files

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFiles_DefaultsAndOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":                     "b",
		"a.txt":                     "a",
		"src/main.go":               "package main",
		"src/util/strings.go":       "package util",
		"node_modules/lib/index.js": "x",
		".git/HEAD":                 "ref",
		"package-lock.json":         "{}",
		"debug.log":                 "log",
		"repopack-output.txt":       "old artifact",
	})

	got, err := SearchFiles(root, searchConfig(root))
	require.NoError(t, err)

	want := []string{"a.txt", "b.txt", "src/main.go", "src/util/strings.go"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchFiles_DefaultPatternsOff(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "a",
		"debug.log": "log",
	})
	cfg := searchConfig(root)
	cfg.Ignore.UseDefaultPatterns = false

	got, err := SearchFiles(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "debug.log"}, got)
}

func TestSearchFiles_IgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "secret/\n*.tmp\n# comment\n",
		".repopackignore":     "docs/\n",
		"keep.go":             "x",
		"scratch.tmp":         "x",
		"secret/key.pem":      "x",
		"docs/guide.md":       "x",
		"pkg/.gitignore":      "generated.go\n",
		"pkg/generated.go":    "x",
		"pkg/handwritten.go":  "x",
		"other/generated.go":  "x",
		"pkg/.repopackignore": "/handwritten.go\n",
	})

	t.Run("gitignore on", func(t *testing.T) {
		got, err := SearchFiles(root, searchConfig(root))
		require.NoError(t, err)
		assert.Equal(t, []string{
			".gitignore",
			".repopackignore",
			"keep.go",
			"other/generated.go",
			"pkg/.gitignore",
			"pkg/.repopackignore",
		}, got)
	})

	t.Run("gitignore off", func(t *testing.T) {
		cfg := searchConfig(root)
		cfg.Ignore.UseGitignore = false
		got, err := SearchFiles(root, cfg)
		require.NoError(t, err)
		assert.Contains(t, got, "scratch.tmp")
		assert.Contains(t, got, "secret/key.pem")
		assert.Contains(t, got, "pkg/generated.go")
		assert.NotContains(t, got, "docs/guide.md", ".repopackignore always applies")
		assert.NotContains(t, got, "pkg/handwritten.go")
	})
}

func TestSearchFiles_NestedNegationReincludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "*.tmp\nvendor/\n",
		"pkg/.gitignore":    "!keep.tmp\n",
		"pkg/keep.tmp":      "x",
		"pkg/drop.tmp":      "x",
		"other/keep.tmp":    "x",
		"vendor/.gitignore": "!lib.go\n",
		"vendor/lib.go":     "x",
		"main.go":           "x",
	})

	got, err := SearchFiles(root, searchConfig(root))
	require.NoError(t, err)

	// A file under an ignored directory stays out, as in git.
	want := []string{".gitignore", "main.go", "pkg/.gitignore", "pkg/keep.tmp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestIgnoreSet_ScopeOrder(t *testing.T) {
	s := &ignoreSet{}
	s.add("", []string{"*.gen"})
	s.add("a", []string{"!*.gen"})
	s.add("a/b", []string{"*.gen"})

	assert.True(t, s.ignored("x.gen", false))
	assert.False(t, s.ignored("a/x.gen", false))
	assert.True(t, s.ignored("a/b/x.gen", false))
	assert.False(t, s.ignored("a/x.go", false))
}

func TestSearchFiles_IncludeAndCustomIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":          "x",
		"src/a.go":           "x",
		"src/a_test.go":      "x",
		"src/nested/b.go":    "x",
		"scripts/run.sh":     "x",
		"src/nested/data.js": "x",
	})
	cfg := searchConfig(root)
	cfg.Include = []string{"src/**/*.go", "scripts"}
	cfg.Ignore.CustomPatterns = []string{"*_test.go"}

	got, err := SearchFiles(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"scripts/run.sh", "src/a.go", "src/nested/b.go"}, got)
}

func TestSearchFiles_IgnoreWinsOverInclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "x",
		"b.txt": "x",
	})
	cfg := searchConfig(root)
	cfg.Include = []string{"*.txt"}
	cfg.Ignore.CustomPatterns = []string{"b.txt"}

	got, err := SearchFiles(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, got)
}

func TestSearchFiles_ExcludesCustomOutputPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":          "x",
		"out/packed.xml": "x",
		"out/other.xml":  "x",
	})
	cfg := searchConfig(root)
	cfg.Output.FilePath = "out/packed.xml"

	got, err := SearchFiles(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "out/other.xml"}, got)
}

func TestSearchFiles_InvalidInclude(t *testing.T) {
	root := t.TempDir()
	cfg := searchConfig(root)
	cfg.Include = []string{"src/[a-"}

	_, err := SearchFiles(root, cfg)
	assert.Error(t, err)
}

func TestSearchFiles_MissingRoot(t *testing.T) {
	root := t.TempDir() + "/missing"
	_, err := SearchFiles(root, searchConfig(root))
	assert.Error(t, err)
}
