package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	Files       []string // single files to watch (roster, biography store)
	AllowedExts map[string]struct{}
	Debounce    time.Duration // coalesce rapid write/rename bursts into one batch
	Logger      *slog.Logger
}

// DefaultWatchExts covers documents plus the roster and biography files.
func DefaultWatchExts() map[string]struct{} {
	return map[string]struct{}{"pdf": {}, "txt": {}, "yaml": {}, "yml": {}, "json": {}}
}

// StartWatcher watches the configured roots and files and emits the set of
// changed paths, sorted, once no further change arrived for Debounce. Both
// channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan []string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 && len(cfg.Files) == 0 {
		logger.Error("watcher start failed: nothing to watch")
		return nil, nil, errors.New("no roots or files provided")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = DefaultWatchExts()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	for _, r := range cfg.Roots {
		if err := addTree(w, r); err != nil {
			logger.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	// Files are watched through their directory so editors that replace the
	// file by rename keep being observed.
	files := map[string]struct{}{}
	for _, f := range cfg.Files {
		abs := filepath.Clean(f)
		files[abs] = struct{}{}
		if err := w.Add(filepath.Dir(abs)); err != nil {
			logger.Error("failed to watch file directory", "file", f, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	underRoot := func(p string) bool {
		for _, r := range cfg.Roots {
			if rel, err := filepath.Rel(r, p); err == nil && !strings.HasPrefix(rel, "..") {
				return true
			}
		}
		return false
	}

	batchCh := make(chan []string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(batchCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		pending := map[string]struct{}{}
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		defer timer.Stop()

		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			clear(pending)
			select {
			case batchCh <- batch:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create && underRoot(e.Name) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := addTree(w, e.Name); err != nil {
							logger.Warn("failed to add new directory to watcher", "path", e.Name, "error", err)
						}
					}
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				_, isFile := files[filepath.Clean(e.Name)]
				if !isFile && !(underRoot(e.Name) && allowed(e.Name, cfg.AllowedExts)) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				timer.Reset(cfg.Debounce)
			case <-timer.C:
				flush()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return batchCh, errCh, nil
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && isHidden(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

func allowed(path string, exts map[string]struct{}) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := exts[ext]
	return ok
}
