package manager

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ftserve/internal/engine"
	"ftserve/internal/fasttext"
	"ftserve/pkg/types"
)

// Manager serializes access to one fastText session. Load, Unload, Test and
// hot reload take the write lock; queries share the read lock since engines
// are read-only while a model is loaded. Training runs on a separate engine
// instance and never blocks queries.
type Manager struct {
	mu    sync.RWMutex
	state State
	cur   *ModelInfo
	err   string
	// Set by Close; every operation fails with ErrClosed afterwards.
	closed bool

	registry     []types.Model
	defaultModel string
	loadBundled  bool
	tempDir      string

	engineKind string
	newEngine  EngineFactory
	eng        engine.Engine
	model      *fasttext.Model
	report     *reportWriter

	trainMu  sync.Mutex
	trainEng engine.Engine
	trainOut io.Writer

	normalize     bool
	watchEnabled  bool
	watchDebounce time.Duration
	watch         *modelWatch
	watchGen      uint64
	watchID       string

	loads   uint64
	unloads uint64
	trains  atomic.Uint64

	startTime time.Time

	pubMu     sync.RWMutex
	publisher EventPublisher
	log       zerolog.Logger
}

func newFacade(m *Manager) *fasttext.Model {
	return fasttext.New(m.eng, fasttext.WithLogger(m.log), fasttext.WithTempDir(m.tempDir))
}

// Ready reports whether a model is loaded and queries can be served.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed && m.state == StateLoaded
}

// ListModels returns the registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// SetRegistry replaces the registry, e.g. after rescanning the models dir.
func (m *Manager) SetRegistry(models []types.Model) {
	m.mu.Lock()
	m.registry = append([]types.Model(nil), models...)
	m.mu.Unlock()
}

// EngineKind returns the configured engine implementation name.
func (m *Manager) EngineKind() string { return m.engineKind }

// Close unloads the model and releases both engines. It is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.unloadLocked("")
	m.closed = true
	eng := m.eng
	m.mu.Unlock()

	m.trainMu.Lock()
	teng := m.trainEng
	m.trainEng = nil
	m.trainMu.Unlock()

	var first error
	for _, e := range []engine.Engine{eng, teng} {
		if c, ok := e.(io.Closer); ok && e != nil {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// reportWriter is the query engine's output stream. Test swaps its target
// to capture the engine's metrics report.
type reportWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *reportWriter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Write(p)
}

func (r *reportWriter) swap(w io.Writer) io.Writer {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.w
	r.w = w
	return prev
}
