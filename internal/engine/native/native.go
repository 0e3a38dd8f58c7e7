//go:build fasttext

package native

// Link against libfasttext. An rpath of $ORIGIN lets the binary find the
// shared library next to itself.

/*
#cgo CXXFLAGS: -std=c++17 -O2
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -lfasttext -lpthread
#include <stdlib.h>
#include "shim.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"ftserve/internal/engine"
)

// Built reports whether this binary carries the in-process engine.
const Built = true

// Engine owns one native fastText instance. Model memory lives outside the Go
// heap; UnloadModel and Close must be called to release it.
type Engine struct {
	h *C.ft_handle
}

var _ engine.Engine = (*Engine)(nil)

// New allocates a native handle.
func New() (*Engine, error) {
	h := C.ft_new()
	if h == nil {
		return nil, errors.New("native: ft_new returned NULL")
	}
	return &Engine{h: h}, nil
}

// Close frees the model (if any) and the handle itself.
func (e *Engine) Close() error {
	if e.h != nil {
		C.ft_free(e.h)
		e.h = nil
	}
	return nil
}

func takeErr(msg *C.char) error {
	if msg == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(msg))
	return errors.New(C.GoString(msg))
}

// RunCommand trains in-process. Only the supervised, skipgram and cbow modes
// are available; the argument grammar is parsed by fastText itself.
func (e *Engine) RunCommand(argv []string) error {
	n := len(argv)
	if n == 0 {
		return errors.New("native: empty argv")
	}
	arr := unsafe.Slice((**C.char)(C.malloc(C.size_t(n)*C.size_t(unsafe.Sizeof(uintptr(0))))), n)
	for i, a := range argv {
		arr[i] = C.CString(a)
	}
	defer func() {
		for _, p := range arr {
			C.free(unsafe.Pointer(p))
		}
		C.free(unsafe.Pointer(&arr[0]))
	}()
	if err := takeErr(C.ft_train(C.int(n), &arr[0])); err != nil {
		return fmt.Errorf("fasttext %s: %w", argv[min(1, n-1)], err)
	}
	return nil
}

func (e *Engine) CheckModel(path string) bool {
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))
	return C.ft_check_model(cp) != 0
}

func (e *Engine) LoadModel(path string) error {
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))
	return takeErr(C.ft_load_model(e.h, cp))
}

func (e *Engine) IsModelLoaded() bool { return e.h != nil && C.ft_is_loaded(e.h) != 0 }

func (e *Engine) UnloadModel() {
	if e.h != nil {
		C.ft_unload(e.h)
	}
}

func (e *Engine) Test(path string, k int) error {
	if !e.IsModelLoaded() {
		return engine.ErrNoModel
	}
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))
	return takeErr(C.ft_test(e.h, cp, C.int(k)))
}

func (e *Engine) PredictProba(text string, k int, threshold float32) ([]engine.Prediction, error) {
	if !e.IsModelLoaded() {
		return nil, engine.ErrNoModel
	}
	if k <= 0 {
		return nil, fmt.Errorf("native: k must be positive, got %d", k)
	}
	ct := C.CString(text)
	defer C.free(unsafe.Pointer(ct))
	probs := make([]C.float, k)
	labels := make([]*C.char, k)
	var cerr *C.char
	n := int(C.ft_predict(e.h, ct, C.int(k), C.float(threshold), &probs[0], &labels[0], &cerr))
	if n < 0 {
		return nil, takeErr(cerr)
	}
	out := make([]engine.Prediction, n)
	for i := 0; i < n; i++ {
		out[i] = engine.Prediction{
			LogProb: float32(math.Log(float64(probs[i]))),
			Label:   C.GoString(labels[i]),
		}
		C.free(unsafe.Pointer(labels[i]))
	}
	return out, nil
}

type vectorFn func(*C.ft_handle, *C.char, *C.float)

func (e *Engine) vector(fn vectorFn, s string) ([]float32, error) {
	if !e.IsModelLoaded() {
		return nil, engine.ErrNoModel
	}
	dim := int(C.ft_dim(e.h))
	out := make([]float32, dim)
	if dim == 0 {
		return out, nil
	}
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	fn(e.h, cs, (*C.float)(unsafe.Pointer(&out[0])))
	return out, nil
}

func (e *Engine) WordVector(word string) ([]float32, error) {
	return e.vector(func(h *C.ft_handle, s *C.char, o *C.float) { C.ft_word_vector(h, s, o) }, word)
}

func (e *Engine) SentenceVector(text string) ([]float32, error) {
	return e.vector(func(h *C.ft_handle, s *C.char, o *C.float) { C.ft_sentence_vector(h, s, o) }, text)
}

func (e *Engine) SubwordVector(subword string) ([]float32, error) {
	return e.vector(func(h *C.ft_handle, s *C.char, o *C.float) { C.ft_subword_vector(h, s, o) }, subword)
}

func (e *Engine) Words() ([]string, error) {
	if !e.IsModelLoaded() {
		return nil, engine.ErrNoModel
	}
	n := int(C.ft_nwords(e.h))
	out := make([]string, n)
	for i := range out {
		p := C.ft_word(e.h, C.int(i))
		out[i] = C.GoString(p)
		C.free(unsafe.Pointer(p))
	}
	return out, nil
}

func (e *Engine) Labels() ([]string, error) {
	if !e.IsModelLoaded() {
		return nil, engine.ErrNoModel
	}
	n := int(C.ft_nlabels(e.h))
	out := make([]string, n)
	for i := range out {
		p := C.ft_label(e.h, C.int(i))
		out[i] = C.GoString(p)
		C.free(unsafe.Pointer(p))
	}
	return out, nil
}

func (e *Engine) Args() (engine.Args, error) {
	if !e.IsModelLoaded() {
		return engine.Args{}, engine.ErrNoModel
	}
	var a C.ft_args
	C.ft_get_args(e.h, &a)
	defer C.ft_free_args(&a)
	return engine.Args{
		LR:                float64(a.lr),
		LRUpdateRate:      int(a.lr_update_rate),
		Dim:               int(a.dim),
		WS:                int(a.ws),
		Epoch:             int(a.epoch),
		MinCount:          int(a.min_count),
		MinCountLabel:     int(a.min_count_label),
		Neg:               int(a.neg),
		WordNgrams:        int(a.word_ngrams),
		Loss:              C.GoString(a.loss),
		Model:             C.GoString(a.model),
		Bucket:            int(a.bucket),
		Minn:              int(a.minn),
		Maxn:              int(a.maxn),
		T:                 float64(a.t),
		Label:             C.GoString(a.label),
		PretrainedVectors: C.GoString(a.pretrained_vectors),
	}, nil
}
