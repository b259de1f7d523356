package files

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"

	"repopack/internal/config"
	"repopack/internal/logging"
)

// GitignoreFileName is honoured at every directory level when
// ignore.useGitignore is set.
const GitignoreFileName = ".gitignore"

// scopedIgnore is a compiled ignore file that applies below dir.
type scopedIgnore struct {
	dir     string // forward-slash, "" for the root
	matcher *gitignore.GitIgnore
	// negations holds each "!pattern" line compiled on its own, so a scope
	// can re-include a path an outer scope ignored.
	negations []*gitignore.GitIgnore
}

func (s scopedIgnore) matches(sub string, isDir bool) bool {
	return s.matcher.MatchesPath(sub) || (isDir && s.matcher.MatchesPath(sub+"/"))
}

func (s scopedIgnore) reincludes(sub string, isDir bool) bool {
	for _, n := range s.negations {
		if n.MatchesPath(sub) || (isDir && n.MatchesPath(sub+"/")) {
			return true
		}
	}
	return false
}

// ignoreSet evaluates all ignore sources for one search. Scopes are kept
// in walk order, so an ancestor always precedes its descendants.
type ignoreSet struct {
	scopes []scopedIgnore
}

func (s *ignoreSet) add(dir string, lines []string) {
	if len(lines) == 0 {
		return
	}
	scope := scopedIgnore{dir: dir, matcher: gitignore.CompileIgnoreLines(lines...)}
	for _, line := range lines {
		if neg, ok := strings.CutPrefix(line, "!"); ok && neg != "" {
			scope.negations = append(scope.negations, gitignore.CompileIgnoreLines(neg))
		}
	}
	s.scopes = append(s.scopes, scope)
}

// ignored reports whether rel (forward slashes) is excluded. Scopes that
// contain rel are applied outermost first; a deeper scope either ignores the
// path again or re-includes it with a negation, as git does.
func (s *ignoreSet) ignored(rel string, isDir bool) bool {
	ignored := false
	for _, scope := range s.scopes {
		sub := rel
		if scope.dir != "" {
			if !strings.HasPrefix(rel, scope.dir+"/") {
				continue
			}
			sub = strings.TrimPrefix(rel, scope.dir+"/")
		}
		switch {
		case scope.matches(sub, isDir):
			ignored = true
		case ignored && scope.reincludes(sub, isDir):
			ignored = false
		}
	}
	return ignored
}

// SearchFiles returns the files under rootDir selected by cfg, as
// forward-slash paths relative to rootDir in lexical walk order.
//
// A path is selected when it matches an include pattern (all files when
// there are none) and is not matched by any ignore source. Ignore always
// wins over include. Ignored directories are not descended into.
func SearchFiles(rootDir string, cfg *config.Config) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryFiles, "Search files")
	defer timer.Stop()

	includes, err := includePatterns(cfg.Include)
	if err != nil {
		return nil, err
	}

	ignores := &ignoreSet{}
	ignores.add("", baseIgnorePatterns(rootDir, cfg))

	var found []string
	err = filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." {
				if ignores.ignored(rel, true) {
					logging.FilesDebug("Pruning ignored directory %s", rel)
					return filepath.SkipDir
				}
			} else {
				rel = ""
			}
			return loadIgnoreFiles(ignores, p, rel, cfg)
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if ignores.ignored(rel, false) {
			return nil
		}
		if !matchesInclude(includes, rel) {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", rootDir, err)
	}

	logging.FilesDebug("Found %d files under %s", len(found), rootDir)
	return found, nil
}

// baseIgnorePatterns collects the root-level patterns that do not come from
// ignore files.
func baseIgnorePatterns(rootDir string, cfg *config.Config) []string {
	var patterns []string
	if cfg.Ignore.UseDefaultPatterns {
		patterns = append(patterns, DefaultIgnorePatterns...)
	}
	patterns = append(patterns, cfg.Ignore.CustomPatterns...)

	// Never pack the artifact into itself.
	if out := cfg.ResolveOutputPath(); out != "" {
		if rel, err := filepath.Rel(rootDir, out); err == nil && !strings.HasPrefix(rel, "..") {
			patterns = append(patterns, "/"+filepath.ToSlash(rel))
		}
	}
	return patterns
}

// loadIgnoreFiles adds the ignore files found in dir to the set.
func loadIgnoreFiles(ignores *ignoreSet, dir, rel string, cfg *config.Config) error {
	names := []string{config.IgnoreFileName}
	if cfg.Ignore.UseGitignore {
		names = []string{GitignoreFileName, config.IgnoreFileName}
	}
	for _, name := range names {
		lines, err := readIgnoreFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			logging.FilesDebug("Loaded %d patterns from %s", len(lines), path.Join(rel, name))
		}
		ignores.add(rel, lines)
	}
	return nil
}

// readIgnoreFile returns the pattern lines of an ignore file, or nothing if
// it does not exist.
func readIgnoreFile(p string) ([]string, error) {
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// includePatterns validates the configured include globs.
func includePatterns(patterns []string) ([]string, error) {
	var valid []string
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		p = strings.TrimPrefix(p, "./")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
		valid = append(valid, p)
	}
	return valid, nil
}

// matchesInclude reports whether rel matches one of the include patterns. A
// pattern also selects everything beneath a directory it names.
func matchesInclude(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(strings.TrimSuffix(p, "/")+"/**", rel); ok {
			return true
		}
	}
	return false
}
