package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/velobase/jobsheet-tracker/constants"
)

// WatchConfig configures the sheet intake watcher.
type WatchConfig struct {
	Roots       []string // intake directories, watched recursively
	AllowedExts map[string]struct{}
	InitialScan bool          // emit sheets already sitting in the roots
	Debounce    time.Duration // coalesce the event burst a camera upload produces
	Logger      *slog.Logger
}

// StartWatcher watches the intake directories for newly dropped job-sheet
// photos and emits their paths, deduplicated per debounce window. Both
// channels close when ctx is cancelled.
//
// All intake bookkeeping (the pending set and its debounce timer) lives on
// the event loop goroutine; the timer only signals through its channel.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("intake watcher needs at least one root")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}

	paths := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("watch.init.failed", "error", err)
		return nil, nil, err
	}

	for _, root := range cfg.Roots {
		if err := watchTree(w, root, cfg, paths); err != nil {
			log.Error("watch.root.failed", "root", root, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
		log.Info("watch.root.added", "root", root)
	}

	go func() {
		defer close(paths)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		pending := make(map[string]struct{})
		var debounce *time.Timer
		var debounceC <-chan time.Time
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		flush := func() {
			for p := range pending {
				select {
				case paths <- p:
				default:
					log.Warn("watch.emit.dropped", "path", p)
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case <-debounceC:
				debounceC = nil
				flush()

			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// a freshly created subdirectory must be watched too;
					// fsnotify rejects the add for plain files
					_ = w.Add(e.Name)
				}
				if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Rename) {
					continue
				}
				if !isSheetImage(e.Name, cfg.AllowedExts) {
					continue
				}

				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(cfg.Debounce)
				} else {
					if !debounce.Stop() {
						select {
						case <-debounce.C:
						default:
						}
					}
					debounce.Reset(cfg.Debounce)
				}
				debounceC = debounce.C

			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error("watch.fsnotify.error", "error", werr)
				select {
				case errCh <- werr:
				default:
				}
			}
		}
	}()

	return paths, errCh, nil
}

// watchTree registers root and every subdirectory with the watcher and,
// when configured, emits sheet images already present.
func watchTree(w *fsnotify.Watcher, root string, cfg WatchConfig, paths chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan && isSheetImage(path, cfg.AllowedExts) {
			select {
			case paths <- path:
			default:
			}
		}
		return nil
	})
}

func isSheetImage(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
