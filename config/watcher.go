package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads cfile whenever it changes and hands the fresh config to
// onChange. Only dynamic settings (logger mode, checkout timings) are
// worth applying at runtime; listeners and the database pool keep their
// boot-time values. The returned func stops the watcher.
func Watch(cfile string, onChange func(*AppConfig)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(cfile)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case event, okch := <-watcher.Events:
				if !okch {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(cfile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg := LoadConfig(cfile)
				if err := cfg.Validate(); err != nil {
					zap.S().Warnf("config reload skipped: %v", err)
					continue
				}
				zap.S().Infof("config reloaded from %s", cfile)
				onChange(cfg)
			case err, okch := <-watcher.Errors:
				if !okch {
					return
				}
				zap.S().Warnf("config watcher: %v", err)
			}
		}
	}()

	return func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
