package manager

import (
	"time"

	"github.com/google/uuid"
)

// Event names published by the manager.
const (
	EventLoadStart    = "load_start"
	EventLoadDone     = "load_done"
	EventLoadError    = "load_error"
	EventUnloadDone   = "unload_done"
	EventReloadDone   = "reload_done"
	EventReloadError  = "reload_error"
	EventTrainStart   = "train_start"
	EventTrainDone    = "train_done"
	EventTrainError   = "train_error"
	EventTestDone     = "test_done"
	EventWatchStarted = "watch_started"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + model ID and optional fields via key/values.
// Events of one operation (e.g. train_start and train_done) share OpID.
type Event struct {
	Name    string
	ModelID string
	OpID    string
	Time    time.Time
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func newOpID() string { return uuid.NewString() }

func (m *Manager) publish(name, modelID, opID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.pubMu.RLock()
	p := m.publisher
	m.pubMu.RUnlock()
	p.Publish(Event{Name: name, ModelID: modelID, OpID: opID, Time: time.Now(), Fields: fields})
}

// SetEventPublisher replaces the publisher; nil restores the no-op default.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}
