//go:build !fasttext

package native

// This file provides a no-CGO stub for the in-process engine. It is compiled
// when the 'fasttext' build tag is NOT set, keeping default builds CGO-free.

import (
	"ftserve/internal/engine"
)

// Built reports whether this binary carries the in-process engine.
const Built = false

var errNotBuilt = engine.ErrDependencyUnavailable("native fastText support not built (missing 'fasttext' build tag)")

// Engine is a placeholder so callers compile without the tag.
type Engine struct{}

var _ engine.Engine = (*Engine)(nil)

// New fails fast: libfasttext is not linked into this build.
func New() (*Engine, error) { return nil, errNotBuilt }

func (e *Engine) Close() error { return nil }

func (e *Engine) RunCommand([]string) error { return errNotBuilt }
func (e *Engine) CheckModel(string) bool    { return false }
func (e *Engine) LoadModel(string) error    { return errNotBuilt }
func (e *Engine) IsModelLoaded() bool       { return false }
func (e *Engine) UnloadModel()              {}
func (e *Engine) Test(string, int) error    { return errNotBuilt }

func (e *Engine) PredictProba(string, int, float32) ([]engine.Prediction, error) {
	return nil, errNotBuilt
}

func (e *Engine) WordVector(string) ([]float32, error)     { return nil, errNotBuilt }
func (e *Engine) SentenceVector(string) ([]float32, error) { return nil, errNotBuilt }
func (e *Engine) SubwordVector(string) ([]float32, error)  { return nil, errNotBuilt }
func (e *Engine) Words() ([]string, error)                 { return nil, errNotBuilt }
func (e *Engine) Labels() ([]string, error)                { return nil, errNotBuilt }
func (e *Engine) Args() (engine.Args, error)               { return engine.Args{}, errNotBuilt }
