package finder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// ErrDirectoryNotFound is returned (wrapped) when a root neither names an
// existing directory nor matches any directory as a glob pattern.
var ErrDirectoryNotFound = errors.New("directory does not exist")

// vcsDirs are version control metadata directories that are never walked.
var vcsDirs = map[string]bool{
	".svn":         true,
	"_svn":         true,
	"CVS":          true,
	"_darcs":       true,
	".arch-params": true,
	".monotone":    true,
	".bzr":         true,
	".git":         true,
	".hg":          true,
}

// Matcher is a compiled FileFilter. It answers the two questions a walk
// needs: should this directory be entered, and does this file match.
type Matcher struct {
	filter model.FileFilter
	name   glob.Glob
}

// NewMatcher compiles the filter's name pattern. An empty pattern matches
// every file.
func NewMatcher(filter model.FileFilter) (*Matcher, error) {
	pattern := filter.NamePattern
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", filter.NamePattern, err)
	}
	return &Matcher{filter: filter, name: g}, nil
}

// MatchFile reports whether a file with the given base name is selected.
// Dot files are never selected.
func (m *Matcher) MatchFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return m.name.Match(name)
}

// SkipDir reports whether a directory with the given base name is pruned,
// either because the filter excludes it or because it is hidden or VCS
// metadata.
func (m *Matcher) SkipDir(name string) bool {
	if vcsDirs[name] || strings.HasPrefix(name, ".") {
		return true
	}
	return m.filter.Excludes(name)
}

// Discover returns the slash-separated paths (relative to fsys) of all files
// selected by filter, de-duplicated and sorted. Roots must be valid fs.FS
// paths; glob roots are expanded with fs.Glob.
func Discover(fsys fs.FS, filter model.FileFilter) ([]string, error) {
	m, err := NewMatcher(filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string

	for _, root := range filter.Roots {
		dirs, err := ExpandRoot(fsys, root)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			found, err := walk(fsys, dir, m, filter.Recursive)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				if !seen[f] {
					seen[f] = true
					files = append(files, f)
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// ExpandRoot resolves a root to the directories it denotes. An existing
// directory is returned as-is; anything else is treated as a glob pattern
// whose directory matches are returned sorted. An empty root names no
// directory at all and is rejected rather than read as ".".
func ExpandRoot(fsys fs.FS, root string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("empty source root: %w", ErrDirectoryNotFound)
	}
	root = cleanRoot(root)

	if info, err := fs.Stat(fsys, root); err == nil && info.IsDir() {
		return []string{root}, nil
	}

	matches, err := fs.Glob(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("invalid source root %q: %w", root, err)
	}

	var dirs []string
	for _, match := range matches {
		if info, err := fs.Stat(fsys, match); err == nil && info.IsDir() {
			dirs = append(dirs, match)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%q: %w", root, ErrDirectoryNotFound)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// cleanRoot turns a user-supplied root into a valid fs.FS path.
func cleanRoot(root string) string {
	root = path.Clean(filepath.ToSlash(root))
	root = strings.TrimPrefix(root, "./")
	if root == "" {
		return "."
	}
	return root
}

// walk enumerates matching files below dir. The root directory itself is
// never pruned, even when its name is in ExcludeDirs.
func walk(fsys fs.FS, dir string, m *Matcher, recursive bool) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == dir {
				return nil
			}
			if !recursive || m.SkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if m.MatchFile(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return files, nil
}

// ExpandRootOS is ExpandRoot against the real filesystem. A relative root
// is resolved against cwd; the returned directories are absolute.
func ExpandRootOS(cwd, root string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("empty source root: %w", ErrDirectoryNotFound)
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(cwd, root)
	}
	vol := filepath.VolumeName(root)
	base := vol + string(filepath.Separator)
	rel := strings.TrimPrefix(filepath.ToSlash(root[len(vol):]), "/")
	if rel == "" {
		rel = "."
	}

	dirs, err := ExpandRoot(os.DirFS(base), rel)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(base, filepath.FromSlash(d)))
	}
	return out, nil
}

// DiscoverOS runs Discover against the real filesystem. Relative roots are
// resolved against cwd and reported relative to it; absolute roots are
// reported as absolute paths. Returned paths use the OS separator.
func DiscoverOS(cwd string, filter model.FileFilter) ([]string, error) {
	var relRoots []string
	byBase := make(map[string][]string)
	var bases []string

	for _, root := range filter.Roots {
		if !filepath.IsAbs(root) {
			// fs.FS paths cannot climb above their root.
			if r := cleanRoot(root); r != ".." && !strings.HasPrefix(r, "../") {
				relRoots = append(relRoots, root)
				continue
			}
			root = filepath.Join(cwd, root)
		}
		vol := filepath.VolumeName(root)
		base := vol + string(filepath.Separator)
		if _, ok := byBase[base]; !ok {
			bases = append(bases, base)
		}
		rel := strings.TrimPrefix(filepath.ToSlash(root[len(vol):]), "/")
		byBase[base] = append(byBase[base], rel)
	}

	var out []string

	if len(relRoots) > 0 {
		f := filter
		f.Roots = relRoots
		files, err := Discover(os.DirFS(cwd), f)
		if err != nil {
			return nil, err
		}
		for _, p := range files {
			out = append(out, filepath.FromSlash(p))
		}
	}

	for _, base := range bases {
		f := filter
		f.Roots = byBase[base]
		files, err := Discover(os.DirFS(base), f)
		if err != nil {
			return nil, err
		}
		for _, p := range files {
			out = append(out, filepath.Join(base, filepath.FromSlash(p)))
		}
	}

	return out, nil
}
