package manager

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// modelWatch reloads the loaded model when its file is rewritten, e.g. by a
// training run writing to the same -output.
type modelWatch struct {
	w        *fsnotify.Watcher
	path     string // absolute, compared against event names
	loadPath string // as originally loaded
	gen      uint64

	mu    sync.Mutex
	timer *time.Timer
}

// startWatchLocked watches the directory of path; watching the file itself
// would lose the watch when it is replaced by rename. m.mu must be held.
func (m *Manager) startWatchLocked(path string) {
	m.stopWatchLocked()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		m.log.Warn().Err(err).Msg("model watch unavailable")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		m.log.Warn().Err(err).Str("path", abs).Msg("model watch unavailable")
		return
	}
	m.watchGen++
	m.watchID = ""
	if m.cur != nil {
		m.watchID = m.cur.ID
	}
	mw := &modelWatch{w: w, path: abs, loadPath: path, gen: m.watchGen}
	m.watch = mw
	go m.watchLoop(mw)
	m.publish(EventWatchStarted, "", "", map[string]any{"path": abs})
}

// stopWatchLocked closes the watcher without waiting for its goroutine; a
// pending reload notices the generation change and does nothing.
func (m *Manager) stopWatchLocked() {
	mw := m.watch
	if mw == nil {
		return
	}
	m.watch = nil
	m.watchGen++
	mw.mu.Lock()
	if mw.timer != nil {
		mw.timer.Stop()
	}
	mw.mu.Unlock()
	_ = mw.w.Close()
}

func (m *Manager) watchLoop(mw *modelWatch) {
	for {
		select {
		case ev, ok := <-mw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != mw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			mw.mu.Lock()
			if mw.timer != nil {
				mw.timer.Stop()
			}
			mw.timer = time.AfterFunc(m.watchDebounce, func() { m.reload(mw.gen) })
			mw.mu.Unlock()
		case err, ok := <-mw.w.Errors:
			if !ok {
				return
			}
			m.log.Warn().Err(err).Str("path", mw.path).Msg("model watch error")
		}
	}
}

// reload swaps the model for the current contents of the watched file. A
// failed reload leaves the session unloaded but keeps watching, so the next
// rewrite of the file is retried.
func (m *Manager) reload(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.watch == nil || m.watch.gen != gen {
		return
	}
	id, path := m.watchID, m.watch.loadPath
	op := newOpID()
	if m.model.Loaded() {
		m.model.Unload()
		m.unloads++
	}
	err := m.observe("reload", func() error { return m.model.Load(path) })
	if err != nil {
		m.state = StateError
		m.err = err.Error()
		m.cur = nil
		modelLoaded.Set(0)
		m.log.Warn().Err(err).Str("model", path).Msg("reload failed")
		m.publish(EventReloadError, id, op, map[string]any{"path": path, "error": err.Error()})
		return
	}
	m.loads++
	m.state = StateLoaded
	m.err = ""
	m.cur = &ModelInfo{ID: id, Path: path}
	modelLoaded.Set(1)
	m.log.Info().Str("model", path).Msg("model reloaded")
	m.publish(EventReloadDone, id, op, map[string]any{"path": path})
}
