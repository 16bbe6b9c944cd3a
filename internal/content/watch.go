package content

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Watch reloads live whenever files under dir change, until ctx is done.
// Bursts of events within the debounce window trigger one reload.
func Watch(ctx context.Context, dir string, live *Live, logger *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Printf("watching content dir=%s", dir)

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				watchNewDir(w, ev.Name, logger)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := live.Reload(ctx); err != nil {
				logger.Printf("reload content failed err=%v", err)
				continue
			}
			logger.Printf("reloaded content posts=%d", live.Site().Posts.Len())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error err=%v", err)
		}
	}
}

// watchNewDir adds a directory created after Watch started.
func watchNewDir(w interface{ Add(string) error }, name string, logger *log.Logger) {
	fi, err := os.Stat(name)
	if err != nil || !fi.IsDir() {
		return
	}
	if err := w.Add(name); err != nil {
		logger.Printf("watch dir failed dir=%s err=%v", name, err)
	}
}
