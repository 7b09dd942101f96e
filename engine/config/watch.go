package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vkrview/engine/core"
)

// Watcher reloads Config whenever its backing file changes, so a
// developer can retune layer/scene capacities without restarting the
// renderer. It does not parse shader or material configs itself —
// that remains an external collaborator per the core's scope.
type Watcher struct {
	path    string
	watch   *fsnotify.Watcher
	onLoad  func(*Config)
	done    chan struct{}
}

// NewWatcher begins watching path and invokes onLoad once immediately,
// then again on every write event.
func NewWatcher(path string, onLoad func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	cw := &Watcher{
		path:   path,
		watch:  w,
		onLoad: onLoad,
		done:   make(chan struct{}),
	}

	if cfg, err := Load(path); err == nil {
		onLoad(cfg)
	} else {
		core.LogError("config: initial load of %s failed: %s", path, err)
	}

	go cw.run()
	return cw, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watch.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogError("config: reload of %s failed: %s", w.path, err)
				continue
			}
			w.onLoad(cfg)
		case err, ok := <-w.watch.Errors:
			if !ok {
				return
			}
			core.LogError("config watcher error: %s", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watch.Close()
}
