// Package fasttext is a session facade over a fastText engine.
//
// A Model owns at most one loaded model at a time and moves between two
// states:
//
//   - Unloaded: only CheckFormat, Load and LoadBundledDefault are meaningful;
//     every query fails with ErrModelNotLoaded.
//   - Loaded: prediction, vector extraction and introspection delegate one
//     call each to the engine.
//
// Load while Loaded is rejected with ErrAlreadyLoaded so a native model is
// never leaked. Unload is idempotent. A model extracted by LoadBundledDefault
// is removed from disk on Unload.
//
// A Model is not safe for concurrent use. Callers sharing one across
// goroutines must serialize Load, Unload and every query themselves; a query
// racing with Unload is undefined. internal/manager provides a locked wrapper.
//
// Training is separate: see internal/train. A model produced by training must
// be loaded explicitly.
package fasttext
