package manager

import (
	"time"

	"ftserve/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cur *ModelInfo
	if m.cur != nil {
		c := *m.cur
		cur = &c
	}
	return Snapshot{State: m.state, CurrentModel: cur, Err: m.err}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		State:          string(m.state),
		Engine:         m.engineKind,
		LastError:      m.err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LoadsTotal:     m.loads,
		UnloadsTotal:   m.unloads,
		TrainsTotal:    m.trains.Load(),
		Watching:       m.watch != nil,
	}
	if m.cur != nil {
		resp.ModelID = m.cur.ID
		resp.ModelPath = m.cur.Path
		resp.Bundled = m.cur.Bundled
	}
	return resp
}

// SanityReport describes runtime checks for the engine dependency.
type SanityReport struct {
	Engine    string `json:"engine"`
	Available bool   `json:"available"`
	BinPath   string `json:"bin_path,omitempty"`
	Error     string `json:"error,omitempty"`
}

// binResolver is implemented by engines backed by an external executable.
type binResolver interface {
	Bin() (string, error)
}

// SanityCheck validates that the engine's runtime dependency is present.
// It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	r := SanityReport{Engine: m.engineKind, Available: true}
	if b, ok := m.eng.(binResolver); ok {
		p, err := b.Bin()
		r.BinPath = p
		if err != nil {
			r.Available = false
			r.Error = err.Error()
		}
	}
	return r
}
