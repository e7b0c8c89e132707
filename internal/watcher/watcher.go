// Package watcher is the fsnotify-backed watch source: it watches the base
// directories of a set of glob patterns and forwards write events for
// matching files to the installed change handlers.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/VoxDroid/waex/internal/dispatcher"
)

// errBuffer bounds the Errors channel; errors beyond it are dropped.
const errBuffer = 16

// Options configures Watch.
type Options struct {
	// Ignored are doublestar patterns matched against both the
	// cwd-relative and the absolute path of every file and directory.
	Ignored []string
	// Cwd is the directory relative paths are resolved against, and the
	// one event paths are reported relative to. Empty means ".".
	Cwd string
}

// Handle is a running watch. It implements dispatcher.Source.
type Handle struct {
	fsw      *fsnotify.Watcher
	cwd      string
	patterns []string
	ignored  []string

	mu       sync.RWMutex
	handlers []dispatcher.ChangeHandler
	roots    []string

	errs chan error
}

// Watch starts watching paths, which may be files, directories or
// doublestar globs such as ./src/**/*.{js,ts}. Base directories that do
// not exist are skipped.
func Watch(paths []string, opts Options) (*Handle, error) {
	cwd := opts.Cwd
	if cwd == "" {
		cwd = "."
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve watch cwd: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	h := &Handle{
		fsw:     fsw,
		cwd:     cwd,
		ignored: opts.Ignored,
		errs:    make(chan error, errBuffer),
	}

	for _, p := range paths {
		full, base, recursive, err := h.normalize(p)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		h.patterns = append(h.patterns, full)
		if recursive {
			h.roots = append(h.roots, base)
		}
		if err := h.addTree(base, recursive); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return h, nil
}

// normalize turns p into an absolute slash pattern and the directory that
// has to be watched to see its matches.
func (h *Handle) normalize(p string) (pattern, base string, recursive bool, err error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(h.cwd, p)
	}
	p = filepath.ToSlash(filepath.Clean(p))
	if !doublestar.ValidatePattern(p) {
		return "", "", false, fmt.Errorf("invalid watch pattern %q", p)
	}

	if fi, statErr := os.Stat(filepath.FromSlash(p)); statErr == nil && fi.IsDir() {
		return p + "/**", filepath.FromSlash(p), true, nil
	}
	dir, rest := doublestar.SplitPattern(p)
	recursive = strings.Contains(rest, "**") || strings.Contains(rest, "/")
	return p, filepath.FromSlash(dir), recursive, nil
}

func (h *Handle) addTree(root string, recursive bool) error {
	fi, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !fi.IsDir() {
		return nil
	}
	if !recursive {
		return h.add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// vanished mid-walk
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && h.isIgnored(path) {
			return filepath.SkipDir
		}
		return h.add(path)
	})
}

func (h *Handle) add(dir string) error {
	if err := h.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// isIgnored reports whether abs matches an ignore pattern.
func (h *Handle) isIgnored(abs string) bool {
	slash := filepath.ToSlash(abs)
	rel := h.relative(abs)
	for _, pat := range h.ignored {
		pat = filepath.ToSlash(pat)
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, slash); ok {
			return true
		}
	}
	return false
}

func (h *Handle) matches(abs string) bool {
	slash := filepath.ToSlash(abs)
	for _, pat := range h.patterns {
		if ok, _ := doublestar.Match(pat, slash); ok {
			return true
		}
	}
	return false
}

// relative returns abs relative to the cwd, in slash form, or abs itself
// when it lies outside the cwd.
func (h *Handle) relative(abs string) string {
	rel, err := filepath.Rel(h.cwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func (h *Handle) inRecursiveRoot(dir string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.roots {
		if dir == r || strings.HasPrefix(dir, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// On installs a change handler.
func (h *Handle) On(c dispatcher.ChangeHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, c)
}

// Off removes a handler previously passed to On.
func (h *Handle) Off(c dispatcher.ChangeHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, x := range h.handlers {
		if x == c {
			h.handlers = append(h.handlers[:i:i], h.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns the number of installed handlers.
func (h *Handle) Handlers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Dirs lists the directories currently watched.
func (h *Handle) Dirs() []string {
	return h.fsw.WatchList()
}

// Errors reports errors from the underlying watcher.
func (h *Handle) Errors() <-chan error {
	return h.errs
}

func (h *Handle) report(err error) {
	select {
	case h.errs <- err:
	default:
	}
}

// Run forwards events until ctx is cancelled or the handle is closed.
func (h *Handle) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-h.fsw.Events:
			if !ok {
				return
			}
			h.handle(event)
		case err, ok := <-h.fsw.Errors:
			if !ok {
				return
			}
			h.report(err)
		}
	}
}

func (h *Handle) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			if h.inRecursiveRoot(filepath.Dir(event.Name)) && !h.isIgnored(event.Name) {
				if err := h.addTree(event.Name, true); err != nil {
					h.report(err)
				}
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) {
		return
	}
	if h.isIgnored(event.Name) || !h.matches(event.Name) {
		return
	}
	path := h.relative(event.Name)

	h.mu.RLock()
	hs := append([]dispatcher.ChangeHandler(nil), h.handlers...)
	h.mu.RUnlock()
	for _, c := range hs {
		c.HandleChange(path)
	}
}

// Close stops the underlying watcher; Run returns shortly after.
func (h *Handle) Close() error {
	return h.fsw.Close()
}
