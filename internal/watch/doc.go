// Package watch rebuilds the documentation when sources change.
//
// A Watcher registers every directory below the configured source roots
// with github.com/fsnotify/fsnotify, skipping the same subtrees discovery
// skips. Events whose path matches the configured source regex are
// debounced and then trigger a single rebuild. Directories created while
// watching are added as they appear.
package watch
