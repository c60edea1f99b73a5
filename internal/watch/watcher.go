package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/doctumcfg/internal/finder"
	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// DefaultDebounce is how long the event stream must stay quiet before a
// rebuild starts. Editors typically write a file in several steps.
const DefaultDebounce = 500 * time.Millisecond

// BuildFunc performs one rebuild. It runs on the watcher goroutine, so
// changes made while it runs are collected into the next rebuild.
type BuildFunc func(ctx context.Context) error

// Watcher watches the source roots of a configuration.
type Watcher struct {
	// Debounce overrides DefaultDebounce when non-zero.
	Debounce time.Duration

	fsw     *fsnotify.Watcher
	matcher *finder.Matcher
	re      *regexp.Regexp
	ignore  []string
	log     logrus.FieldLogger
}

// New creates a Watcher for cfg's source roots, resolved against cwd. The
// build and cache directories are never watched, so a rebuild cannot
// trigger itself.
//
// Returns an error wrapping finder.ErrDirectoryNotFound when a root
// denotes no directory.
func New(cwd string, cfg *model.Configuration, log logrus.FieldLogger) (*Watcher, error) {
	re, err := finder.CompileSourceRegex(cfg.SourceRegex)
	if err != nil {
		return nil, err
	}
	m, err := finder.NewMatcher(cfg.Filter)
	if err != nil {
		return nil, err
	}

	var roots []string
	for _, root := range cfg.Filter.Roots {
		dirs, err := finder.ExpandRootOS(cwd, root)
		if err != nil {
			return nil, err
		}
		roots = append(roots, dirs...)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		matcher: m,
		re:      re,
		ignore:  []string{filepath.Clean(cfg.BuildDir), filepath.Clean(cfg.CacheDir)},
		log:     log,
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree registers root and every directory below it that discovery
// would enter.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) || (p != root && w.matcher.SkipDir(d.Name())) {
			return filepath.SkipDir
		}
		w.log.WithField("dir", p).Debug("watching")
		return w.fsw.Add(p)
	})
}

// ignored reports whether p lies in the build or cache directory.
func (w *Watcher) ignored(p string) bool {
	p = filepath.Clean(p)
	for _, dir := range w.ignore {
		if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Relevant reports whether ev should trigger a rebuild: a content change
// to a path matching the source regex outside the output directories.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.ignored(ev.Name) || strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return w.re.MatchString(filepath.ToSlash(ev.Name))
}

// Run delivers events until ctx is cancelled, calling build once per burst
// of relevant changes. A failed build is logged and watching continues.
// Run closes the Watcher before returning.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	defer func() { _ = w.fsw.Close() }()

	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			timer.Reset(debounce)
		}
		timerCh = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				w.addCreatedDir(ev.Name)
			}
			if w.Relevant(ev) {
				w.log.WithFields(logrus.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("change")
				schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-timerCh:
			timerCh = nil
			w.log.Info("sources changed, rebuilding")
			if err := build(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.WithError(err).Warn("rebuild failed")
			}
		}
	}
}

// addCreatedDir starts watching a directory created after New.
func (w *Watcher) addCreatedDir(p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() || w.matcher.SkipDir(filepath.Base(p)) {
		return
	}
	if err := w.addTree(p); err != nil {
		w.log.WithError(err).WithField("dir", p).Warn("failed to watch new directory")
	}
}

// Close stops watching. It is safe to call after Run has returned.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
