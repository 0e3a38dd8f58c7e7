// Package manager provides lifecycle, locking and inference coordination for
// one fastText session shared by the HTTP layer and the CLI. It is structured
// into small files by concern:
//
//   - manager.go: core Manager type, Close, simple getters.
//   - config.go: ManagerConfig, engine selection; NewWithConfig applies defaults.
//   - types.go: state types (State, VectorKind, ModelInfo, Snapshot).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, IsBadRequest).
//   - lifecycle.go: Load/LoadID/LoadPath/LoadDefault, Unload, Bootstrap.
//   - inference.go: Predict, Vector, Info, Words, Labels, Test.
//   - train.go: Train on a dedicated engine instance.
//   - watch.go: hot reload of the loaded file via fsnotify.
//   - status.go: Status/Snapshot reporting and SanityCheck.
//   - metrics.go: Prometheus instrumentation of engine calls.
//   - events.go: EventPublisher and event names.
//
// Engines:
//
//   - cli (default): subprocess engine; needs a fasttext executable.
//   - native: in-process cgo engine, enabled with `-tags=fasttext`. Without
//     the tag NewWithConfig fails with a dependency-unavailable error.
//
// Errors from the session facade (package fasttext) pass through unchanged;
// callers classify them with the fasttext.IsXxx predicates.
package manager
