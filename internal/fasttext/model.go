package fasttext

import (
	"os"

	"github.com/rs/zerolog"

	"ftserve/internal/bundled"
	"ftserve/internal/common/fsutil"
	"ftserve/internal/engine"
)

// State is the lifecycle state of a Model.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoaded   State = "loaded"
)

// Model is a single-session facade over an engine. The zero value is not
// usable; construct with New.
type Model struct {
	eng   engine.Engine
	state State
	path  string
	// tempPath is set when the loaded file was extracted by LoadBundledDefault.
	tempPath string

	tempDir string
	log     zerolog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l zerolog.Logger) Option { return func(m *Model) { m.log = l } }

// WithTempDir sets where the bundled model is extracted (default os.TempDir).
func WithTempDir(dir string) Option { return func(m *Model) { m.tempDir = dir } }

// New binds a facade to eng. The engine must not be shared with another Model.
func New(eng engine.Engine, opts ...Option) *Model {
	m := &Model{eng: eng, state: StateUnloaded, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Model) State() State { return m.state }

// Loaded reports whether a model is ready for queries.
func (m *Model) Loaded() bool { return m.state == StateLoaded }

// Path returns the file backing the loaded model, or "" when Unloaded.
func (m *Model) Path() string { return m.path }

// Bundled reports whether the loaded model is the extracted bundled default.
func (m *Model) Bundled() bool { return m.tempPath != "" }

// CheckFormat asks the engine whether path is a model it can read. It never
// changes state; missing files report false.
func (m *Model) CheckFormat(path string) bool { return m.eng.CheckModel(path) }

// Load validates and loads the model at path.
//
// Errors, in check order: ErrAlreadyLoaded, FileNotFound, IncompatibleFormat,
// InitializationFailure.
func (m *Model) Load(path string) error {
	if m.state == StateLoaded {
		return ErrAlreadyLoaded
	}
	if !fsutil.IsReadableFile(path) {
		return ErrFileNotFound(path)
	}
	if !m.eng.CheckModel(path) {
		return ErrIncompatibleFormat(path)
	}
	if err := m.eng.LoadModel(path); err != nil {
		m.eng.UnloadModel()
		return ErrInitialization(path, err)
	}
	if !m.eng.IsModelLoaded() {
		m.eng.UnloadModel()
		return ErrInitialization(path, nil)
	}
	m.state = StateLoaded
	m.path = path
	m.log.Info().Str("model", path).Msg("model loaded")
	return nil
}

// LoadBundledDefault extracts the embedded default model to an owner-only
// temp file and loads it. The file is deleted again on Unload, or right away
// if loading fails.
func (m *Model) LoadBundledDefault() error {
	if m.state == StateLoaded {
		return ErrAlreadyLoaded
	}
	p, err := bundled.Materialize(m.tempDir)
	if err != nil {
		return extractionError{cause: err}
	}
	if err := m.Load(p); err != nil {
		_ = os.Remove(p)
		return err
	}
	m.tempPath = p
	return nil
}

// Unload releases the engine model and returns to Unloaded. Calling it while
// Unloaded is a no-op.
func (m *Model) Unload() {
	if m.state != StateLoaded {
		return
	}
	m.eng.UnloadModel()
	m.log.Info().Str("model", m.path).Msg("model unloaded")
	if m.tempPath != "" {
		if err := os.Remove(m.tempPath); err != nil && !os.IsNotExist(err) {
			m.log.Warn().Err(err).Str("path", m.tempPath).Msg("remove extracted model")
		}
		m.tempPath = ""
	}
	m.state = StateUnloaded
	m.path = ""
}

// Close implements io.Closer; it is Unload.
func (m *Model) Close() error {
	m.Unload()
	return nil
}

// With loads path into a fresh facade over eng, runs fn and unloads on every
// exit path, including a panic in fn.
func With(eng engine.Engine, path string, fn func(*Model) error) error {
	m := New(eng)
	if err := m.Load(path); err != nil {
		return err
	}
	defer m.Unload()
	return fn(m)
}

func (m *Model) requireLoaded() error {
	if m.state != StateLoaded {
		return ErrModelNotLoaded
	}
	return nil
}
