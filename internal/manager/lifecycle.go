package manager

import (
	"strings"

	"ftserve/internal/bundled"
	"ftserve/internal/common/fsutil"
	"ftserve/internal/fasttext"
	"ftserve/internal/registry"
	"ftserve/pkg/types"
)

// Load loads the model named by req. Exactly one of ID (registry) or Path
// must be set. With Replace, a loaded model is unloaded first; otherwise a
// loaded model makes Load fail with fasttext.ErrAlreadyLoaded.
func (m *Manager) Load(req types.LoadRequest) error {
	id, path := strings.TrimSpace(req.ID), strings.TrimSpace(req.Path)
	switch {
	case id != "" && path != "":
		return ErrBadRequest("set either id or path, not both")
	case id != "":
		return m.LoadID(id, req.Replace)
	case path != "":
		return m.LoadPath(path, req.Replace)
	default:
		return ErrBadRequest("id or path is required")
	}
}

// LoadID loads a registry model.
func (m *Manager) LoadID(id string, replace bool) error {
	mdl, ok := registry.Find(m.ListModels(), id)
	if !ok {
		return ErrModelNotFound(id)
	}
	return m.load(mdl.ID, mdl.Path, replace)
}

// LoadPath loads a model file. A leading ~ is expanded.
func (m *Manager) LoadPath(path string, replace bool) error {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return err
	}
	return m.load("", p, replace)
}

// LoadDefault extracts and loads the bundled model.
func (m *Manager) LoadDefault(replace bool) error {
	return m.load(bundled.Name, "", replace)
}

func (m *Manager) load(id, path string, replace bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if replace && m.model.Loaded() {
		m.unloadLocked("")
	}
	op := newOpID()
	isBundled := path == ""
	target := path
	if isBundled {
		target = bundled.Name
	}
	m.publish(EventLoadStart, id, op, map[string]any{"path": target})
	err := m.observe("load", func() error {
		if isBundled {
			return m.model.LoadBundledDefault()
		}
		return m.model.Load(path)
	})
	if err != nil {
		m.err = err.Error()
		if !fasttext.IsAlreadyLoaded(err) {
			m.state = StateError
		}
		m.log.Warn().Err(err).Str("model", target).Msg("load failed")
		m.publish(EventLoadError, id, op, map[string]any{"path": target, "error": err.Error()})
		return err
	}
	m.state = StateLoaded
	m.err = ""
	m.loads++
	m.cur = &ModelInfo{ID: id, Path: m.model.Path(), Bundled: m.model.Bundled()}
	modelLoaded.Set(1)
	if m.watchEnabled && !isBundled {
		m.startWatchLocked(m.cur.Path)
	}
	m.publish(EventLoadDone, id, op, map[string]any{"path": m.cur.Path, "bundled": m.cur.Bundled})
	return nil
}

// Unload releases the loaded model and clears a previous load error.
// Unloading while nothing is loaded is a no-op.
func (m *Manager) Unload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.unloadLocked(newOpID())
	m.err = ""
	return nil
}

func (m *Manager) unloadLocked(op string) {
	m.stopWatchLocked()
	if !m.model.Loaded() {
		m.state = StateUnloaded
		m.cur = nil
		return
	}
	id, path := "", m.model.Path()
	if m.cur != nil {
		id = m.cur.ID
	}
	m.model.Unload()
	m.unloads++
	m.state = StateUnloaded
	m.cur = nil
	modelLoaded.Set(0)
	m.publish(EventUnloadDone, id, op, map[string]any{"path": path})
}

// Bootstrap performs the startup load: the configured default model (a
// registry id, else a path) or, failing that, the bundled model when
// enabled. With neither configured it does nothing.
func (m *Manager) Bootstrap() error {
	switch {
	case m.defaultModel != "":
		if _, ok := registry.Find(m.ListModels(), m.defaultModel); ok {
			return m.LoadID(m.defaultModel, false)
		}
		return m.LoadPath(m.defaultModel, false)
	case m.loadBundled:
		return m.LoadDefault(false)
	}
	return nil
}
