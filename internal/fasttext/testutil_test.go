package fasttext

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ftserve/internal/engine"
)

// fakeEngine is an in-memory engine used for tests.
type fakeEngine struct {
	compatible bool
	loadErr    error
	neverReady bool

	loaded     bool
	loadedPath string
	unloads    int

	preds    []engine.Prediction
	predErr  error
	lastK    int
	lastTh   float32
	dim      int
	args     engine.Args
	words    []string
	labels   []string
	testedK  int
	commands [][]string
}

func newFakeEngine() *fakeEngine {
	a := engine.DefaultArgs()
	a.Dim = 4
	a.Model = "sup"
	a.Loss = "softmax"
	return &fakeEngine{
		compatible: true,
		dim:        4,
		args:       a,
		words:      []string{"</s>", "soccer", "pizza"},
		labels:     []string{"__label__sports", "__label__food"},
		preds: []engine.Prediction{
			{Label: "__label__sports", LogProb: -0.1},
			{Label: "__label__food", LogProb: -2.4},
		},
	}
}

func (f *fakeEngine) RunCommand(argv []string) error {
	f.commands = append(f.commands, argv)
	return nil
}

func (f *fakeEngine) CheckModel(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return f.compatible && engine.CheckModelFile(path)
}

func (f *fakeEngine) LoadModel(path string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = !f.neverReady
	f.loadedPath = path
	return nil
}

func (f *fakeEngine) IsModelLoaded() bool { return f.loaded }

func (f *fakeEngine) UnloadModel() {
	f.loaded = false
	f.loadedPath = ""
	f.unloads++
}

func (f *fakeEngine) Test(path string, k int) error {
	f.testedK = k
	return nil
}

func (f *fakeEngine) PredictProba(text string, k int, threshold float32) ([]engine.Prediction, error) {
	f.lastK, f.lastTh = k, threshold
	if f.predErr != nil {
		return nil, f.predErr
	}
	return append([]engine.Prediction(nil), f.preds...), nil
}

func (f *fakeEngine) vec() ([]float32, error) {
	if !f.loaded {
		return nil, errors.New("fake: vector without model")
	}
	return make([]float32, f.dim), nil
}

func (f *fakeEngine) WordVector(string) ([]float32, error)     { return f.vec() }
func (f *fakeEngine) SentenceVector(string) ([]float32, error) { return f.vec() }
func (f *fakeEngine) SubwordVector(string) ([]float32, error)  { return f.vec() }
func (f *fakeEngine) Words() ([]string, error)                 { return f.words, nil }
func (f *fakeEngine) Labels() ([]string, error)                { return f.labels, nil }
func (f *fakeEngine) Args() (engine.Args, error)               { return f.args, nil }

// writeModelFile writes a file with a valid fastText header.
func writeModelFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	hdr := make([]byte, 8)
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(engine.FileFormatMagic))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(engine.FileFormatVersion))
	if err := os.WriteFile(p, append(hdr, "payload"...), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return p
}

func loadedModel(t *testing.T) (*Model, *fakeEngine) {
	t.Helper()
	f := newFakeEngine()
	m := New(f)
	if err := m.Load(writeModelFile(t, "m.bin")); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m, f
}
