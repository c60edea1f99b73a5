package finder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// phpFilter returns the filter the builder produces for the given roots.
func phpFilter(roots ...string) model.FileFilter {
	return model.FileFilter{
		Roots:       roots,
		NamePattern: "*.php",
		ExcludeDirs: []string{"tests", "resources", "behat", "vendor"},
		Recursive:   true,
	}
}

// projectFS models a typical monorepo layout with sources, excluded
// subtrees at several depths, non-PHP files and hidden entries.
func projectFS() fstest.MapFS {
	file := &fstest.MapFile{Data: []byte("<?php\n")}
	return fstest.MapFS{
		"src/Foo.php":                        file,
		"src/Bar/Baz.php":                    file,
		"src/Bar/README.md":                  file,
		"src/tests/FooTest.php":              file,
		"src/Bar/resources/view.php":         file,
		"src/.hidden/Secret.php":             file,
		"src/.Dot.php":                       file,
		"src/.git/hooks/pre-commit.php":      file,
		"packages/alpha/src/Alpha.php":       file,
		"packages/alpha/vendor/dep/Dep.php":  file,
		"packages/alpha/behat/Context.php":   file,
		"packages/beta/lib/Beta.php":         file,
		"packages/beta/tests/unit/BTest.php": file,
		"packages/notes.txt":                 file,
		"vendor/autoload.php":                file,
	}
}

// TestDiscover_DefaultRoots verifies the default "src:packages/*" layout:
// globs expand to directories, excluded subtrees are pruned at any depth,
// only *.php files are selected, and hidden entries are ignored.
func TestDiscover_DefaultRoots(t *testing.T) {
	files, err := Discover(projectFS(), phpFilter("src", "packages/*"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"packages/alpha/src/Alpha.php",
		"packages/beta/lib/Beta.php",
		"src/Bar/Baz.php",
		"src/Foo.php",
	}, files)
}

// TestDiscover_ExplicitExcludedRoot checks that a root is walked even when
// its own name is one of the excluded names.
func TestDiscover_ExplicitExcludedRoot(t *testing.T) {
	files, err := Discover(projectFS(), phpFilter("vendor"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/autoload.php"}, files)
}

// TestDiscover_Deduplicates checks overlapping roots report each file once.
func TestDiscover_Deduplicates(t *testing.T) {
	files, err := Discover(projectFS(), phpFilter("src", "./src", "src/Bar"))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Bar/Baz.php", "src/Foo.php"}, files)
}

// TestDiscover_NonRecursive checks that only top-level files are returned
// when the filter is not recursive.
func TestDiscover_NonRecursive(t *testing.T) {
	f := phpFilter("src")
	f.Recursive = false

	files, err := Discover(projectFS(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Foo.php"}, files)
}

// TestDiscover_MissingRoot verifies that a root that matches nothing fails
// with ErrDirectoryNotFound, mirroring the generator's finder.
func TestDiscover_MissingRoot(t *testing.T) {
	tests := []string{"lib", "modules/*", "packages/notes.txt"}

	for _, root := range tests {
		t.Run(root, func(t *testing.T) {
			_, err := Discover(projectFS(), phpFilter("src", root))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDirectoryNotFound))
		})
	}
}

// TestDiscover_EmptyRoot verifies a trailing ":" in the source list (an
// empty root) is rejected instead of scanning the whole tree.
func TestDiscover_EmptyRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"src/A.php":     &fstest.MapFile{Data: []byte("<?php\n")},
		"bin/tool.php":  &fstest.MapFile{Data: []byte("<?php\n")},
		"docs/conf.php": &fstest.MapFile{Data: []byte("<?php\n")},
	}

	files, err := Discover(fsys, phpFilter("src", ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryNotFound))
	assert.Nil(t, files)

	_, err = ExpandRoot(fsys, "")
	assert.True(t, errors.Is(err, ErrDirectoryNotFound))

	_, err = DiscoverOS(t.TempDir(), phpFilter(""))
	assert.True(t, errors.Is(err, ErrDirectoryNotFound))
}

// TestExpandRoot verifies glob roots keep only directories, sorted.
func TestExpandRoot(t *testing.T) {
	dirs, err := ExpandRoot(projectFS(), "packages/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"packages/alpha", "packages/beta"}, dirs)

	dirs, err = ExpandRoot(projectFS(), "src/")
	require.NoError(t, err)
	assert.Equal(t, []string{"src"}, dirs)
}

// TestMatcher covers file matching and directory pruning rules.
func TestMatcher(t *testing.T) {
	m, err := NewMatcher(phpFilter())
	require.NoError(t, err)

	assert.True(t, m.MatchFile("Foo.php"))
	assert.False(t, m.MatchFile("Foo.phpt"))
	assert.False(t, m.MatchFile("Foo.PHP"))
	assert.False(t, m.MatchFile(".Foo.php"))

	assert.True(t, m.SkipDir("tests"))
	assert.True(t, m.SkipDir("vendor"))
	assert.True(t, m.SkipDir(".git"))
	assert.True(t, m.SkipDir("CVS"))
	assert.True(t, m.SkipDir(".idea"))
	assert.False(t, m.SkipDir("src"))
	assert.False(t, m.SkipDir("testing"))
}

// TestNewMatcher_InvalidPattern checks that a malformed glob is reported.
func TestNewMatcher_InvalidPattern(t *testing.T) {
	_, err := NewMatcher(model.FileFilter{NamePattern: "[php"})
	assert.Error(t, err)
}

// TestDiscoverOS runs discovery against a real temporary directory with
// both a relative and an absolute root.
func TestDiscoverOS(t *testing.T) {
	project := t.TempDir()
	external := t.TempDir()

	write := func(p string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<?php\n"), 0o644))
	}
	write(filepath.Join(project, "src", "A.php"))
	write(filepath.Join(project, "src", "tests", "ATest.php"))
	write(filepath.Join(external, "lib", "B.php"))

	files, err := DiscoverOS(project, phpFilter("src", filepath.Join(external, "lib")))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("src", "A.php"),
		filepath.Join(external, "lib", "B.php"),
	}, files)
}

// TestDiscoverOS_ParentRoot checks roots that climb above cwd are resolved
// as absolute paths.
func TestDiscoverOS_ParentRoot(t *testing.T) {
	base := t.TempDir()
	project := filepath.Join(base, "project")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "shared"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "shared", "S.php"), []byte("<?php\n"), 0o644))

	files, err := DiscoverOS(project, phpFilter("../shared"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(base, "shared", "S.php")}, files)
}
