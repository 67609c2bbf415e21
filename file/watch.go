package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gobeaver/valkit"
)

// Watch swaps the detector's database whenever the magic file at path changes.
func (d *MagicDetector) Watch(ctx context.Context, path string) error {
	return WatchMagicFile(ctx, path, d.SetDatabase)
}

// WatchMagicFile calls fn with the reloaded database whenever the magic file
// at path is written or created. The parent directory is watched so that
// files replaced by rename are picked up. Files that fail to parse are
// logged and skipped. Watching stops when ctx is done.
func WatchMagicFile(ctx context.Context, path string, fn func(*MagicDB)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	log := valkit.Logger().WithField("magic_file", abs)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				db, err := LoadMagicFile(abs)
				if err != nil {
					log.WithError(err).Warn("magic file reload failed")
					continue
				}
				fn(db)
				log.WithFields(logrus.Fields{
					"signatures": len(db.Signatures),
					"digest":     db.Digest,
				}).Info("magic file reloaded")
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("magic file watcher error")
			}
		}
	}()

	return nil
}
