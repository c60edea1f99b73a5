// Package finder enumerates the source files selected by a discovery
// filter (model.FileFilter).
//
// The behavior follows the file finder the documentation generator uses:
//   - a root that is not an existing directory is expanded as a glob
//     (e.g. "packages/*"), keeping only directories; a root that matches
//     nothing is an error
//   - the walk is recursive and never follows symbolic links
//   - directories named in the filter's ExcludeDirs are pruned at any depth
//   - dot files, dot directories and VCS metadata directories are ignored
//   - file base names are matched against the filter's NamePattern, which
//     is compiled with github.com/gobwas/glob
//
// Discovery runs against an fs.FS so tests can use fstest.MapFS; DiscoverOS
// maps the filter's roots onto the real filesystem.
package finder
