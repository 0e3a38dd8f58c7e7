package manager

// State represents the lifecycle state of the managed session.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoaded   State = "loaded"
	StateError    State = "error"
)

// VectorKind selects which embedding a vector query returns.
type VectorKind string

const (
	VectorWord     VectorKind = "word"
	VectorSentence VectorKind = "sentence"
	VectorSubword  VectorKind = "subword"
)

// ModelInfo is a minimal view of the current model.
type ModelInfo struct {
	ID      string
	Path    string
	Bundled bool
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State        State
	CurrentModel *ModelInfo
	Err          string
}
