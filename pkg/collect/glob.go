package collect

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dtnitsch/linkcheck/models"
)

// expandGlob resolves a glob input against the filesystem. Directories
// and paths rejected by the skip rules are dropped; every other match
// is kept whatever its file type.
func (c *Collector) expandGlob(input models.Input) []string {
	pattern := input.Value
	if input.GlobIgnoreCase {
		pattern = foldCasePattern(pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		c.logger().Warn("invalid glob pattern", "pattern", input.Value, "error", err)
		return nil
	}

	ignore := c.loadIgnore(globRoot(input.Value))
	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if c.skip(match, ignore) {
			continue
		}
		files = append(files, match)
	}
	return files
}

// globRoot returns the longest literal directory prefix of a pattern.
func globRoot(pattern string) string {
	dir := pattern
	for strings.ContainsAny(dir, "*?[{") {
		dir = filepath.Dir(dir)
	}
	return dir
}

// foldCasePattern makes a glob case-insensitive by widening every
// letter into a two-character class.
func foldCasePattern(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		lower, upper := r, r
		if 'a' <= r && r <= 'z' {
			upper = r - ('a' - 'A')
		} else if 'A' <= r && r <= 'Z' {
			lower = r + ('a' - 'A')
		}
		if lower != upper {
			sb.WriteByte('[')
			sb.WriteRune(lower)
			sb.WriteRune(upper)
			sb.WriteByte(']')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// walkDir collects the extractable documents under root, honouring
// ignore files and hidden-file policy.
func (c *Collector) walkDir(root string) []string {
	ignore := c.loadIgnore(root)
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && c.SkipHidden && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if c.skipDir(root, path, ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.SkipHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if c.skip(path, ignore) {
			return nil
		}
		if models.FileTypeFromPath(path) == models.FileTypeUnknown {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}

// ignoreSet is a flat list of gitignore-style patterns rooted at a
// directory.
type ignoreSet struct {
	root     string
	patterns []string
}

// loadIgnore reads .gitignore and .ignore files at root. Negations
// and per-subdirectory ignore files are not supported; the common
// cases (directories, extensions, literal names) are.
func (c *Collector) loadIgnore(root string) *ignoreSet {
	if !c.UseIgnoreFiles {
		return nil
	}
	set := &ignoreSet{root: root}
	for _, name := range []string{".gitignore", ".ignore"} {
		f, err := os.Open(filepath.Join(root, name))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
				continue
			}
			set.patterns = append(set.patterns, strings.TrimSuffix(line, "/"))
		}
		f.Close()
	}
	if len(set.patterns) == 0 {
		return nil
	}
	return set
}

func (c *Collector) skip(path string, ignore *ignoreSet) bool {
	return ignore.matches(path)
}

func (c *Collector) skipDir(root, path string, ignore *ignoreSet) bool {
	return ignore.matches(path)
}

func (s *ignoreSet) matches(path string) bool {
	if s == nil {
		return false
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		// Directory patterns swallow everything underneath.
		if strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}
