package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultWatchDebounce = 300 * time.Millisecond
	watchTick            = 50 * time.Millisecond
)

// Watch renders the plans under paths into outDir and renders them again
// whenever a descriptor file changes, until ctx is cancelled. Rapid saves
// are coalesced into one render. A failing render is logged and watching
// continues.
func (a *App) Watch(ctx context.Context, format, outDir string, paths ...string) error {
	if outDir == "" {
		return errors.New("watch requires an output directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(paths) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		a.logger.Debug("Watching directory.", "path", dir)
	}

	a.renderLogged(ctx, format, outDir, paths)

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.relevant(event) || within(event.Name, outDir) {
				continue
			}
			a.logger.Debug("Descriptor changed.", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			pending = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("File watcher error.", "error", err)

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= a.watchDebounce {
				pending = time.Time{}
				a.renderLogged(ctx, format, outDir, paths)
			}
		}
	}
}

func (a *App) renderLogged(ctx context.Context, format, outDir string, paths []string) {
	if err := a.Render(ctx, format, outDir, paths...); err != nil {
		a.logger.Error("Render failed.", "error", err)
		return
	}
	a.logger.Info("Plans rendered.", "out", outDir)
}

// relevant reports whether event touches a descriptor file or a new directory.
func (a *App) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	ext := filepath.Ext(event.Name)
	if ext == "" {
		return event.Has(fsnotify.Create)
	}
	for _, l := range a.loaders {
		if slices.Contains(l.Extensions(), ext) {
			return true
		}
	}
	return false
}

// within reports whether path lies inside dir.
func within(path, dir string) bool {
	absPath, err1 := filepath.Abs(path)
	absDir, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchDirs returns every directory to watch: each directory path with its
// subdirectories, and the parent directory of each file path.
func watchDirs(paths []string) []string {
	var dirs []string
	add := func(dir string) {
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}
