package manager

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"ftserve/internal/engine"
	"ftserve/pkg/types"
)

// writeModelFile creates a file carrying a valid fastText header.
func writeModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, modelBytes(), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return p
}

func modelBytes() []byte {
	hdr := make([]byte, 8)
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(engine.FileFormatMagic))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(engine.FileFormatVersion))
	return append(hdr, "payload"...)
}

// fakeEngine is a lightweight in-memory engine used for tests. It is safe for
// concurrent use so the manager's locking can be exercised under -race.
type fakeEngine struct {
	out io.Writer

	mu        sync.Mutex
	loaded    string
	lastText  string
	commands  [][]string
	preds     []engine.Prediction
	trainGate chan struct{}
	trainErr  error
	loadCalls int
}

func (f *fakeEngine) RunCommand(argv []string) error {
	f.mu.Lock()
	f.commands = append(f.commands, append([]string(nil), argv...))
	gate, terr := f.trainGate, f.trainErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if terr != nil {
		return terr
	}
	for i := 0; i+1 < len(argv); i++ {
		if argv[i] == "-output" {
			return os.WriteFile(argv[i+1]+".bin", modelBytes(), 0o644)
		}
	}
	return nil
}

func (f *fakeEngine) CheckModel(path string) bool { return engine.CheckModelFile(path) }

func (f *fakeEngine) LoadModel(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = path
	f.loadCalls++
	return nil
}

func (f *fakeEngine) IsModelLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded != ""
}

func (f *fakeEngine) UnloadModel() {
	f.mu.Lock()
	f.loaded = ""
	f.mu.Unlock()
}

func (f *fakeEngine) Test(path string, k int) error {
	_, err := fmt.Fprintf(f.out, "N\t3\nP@%d\t0.667\nR@%d\t0.667\n", k, k)
	return err
}

func (f *fakeEngine) PredictProba(text string, k int, threshold float32) ([]engine.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastText = text
	out := append([]engine.Prediction(nil), f.preds...)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeEngine) vec(s string) ([]float32, error) {
	f.mu.Lock()
	f.lastText = s
	f.mu.Unlock()
	return make([]float32, 4), nil
}

func (f *fakeEngine) WordVector(s string) ([]float32, error)     { return f.vec(s) }
func (f *fakeEngine) SentenceVector(s string) ([]float32, error) { return f.vec(s) }
func (f *fakeEngine) SubwordVector(s string) ([]float32, error)  { return f.vec(s) }
func (f *fakeEngine) Words() ([]string, error)                   { return []string{"</s>", "soccer"}, nil }
func (f *fakeEngine) Labels() ([]string, error) {
	return []string{"__label__sports", "__label__food"}, nil
}

func (f *fakeEngine) Args() (engine.Args, error) {
	a := engine.DefaultArgs()
	a.Dim, a.Model, a.Loss = 4, "sup", "softmax"
	return a, nil
}

func (f *fakeEngine) text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastText
}

func (f *fakeEngine) cmds() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.commands...)
}

// fakeFactory records every engine it builds; engines[0] serves queries.
type fakeFactory struct {
	mu      sync.Mutex
	engines []*fakeEngine
	preds   []engine.Prediction
}

func (ff *fakeFactory) build(out io.Writer) (engine.Engine, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	e := &fakeEngine{out: out, preds: ff.preds}
	ff.engines = append(ff.engines, e)
	return e, nil
}

func (ff *fakeFactory) engine(i int) *fakeEngine {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.engines[i]
}

func newTestManager(t *testing.T, cfg ManagerConfig) (*Manager, *fakeFactory) {
	t.Helper()
	ff := &fakeFactory{preds: []engine.Prediction{
		{Label: "__label__sports", LogProb: -0.1},
		{Label: "__label__food", LogProb: -2.5},
	}}
	cfg.NewEngine = ff.build
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	cfg.Logger = zerolog.Nop()
	cfg.TrainOutput = io.Discard
	m, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, ff
}

func registryWith(t *testing.T, ids ...string) []types.Model {
	t.Helper()
	dir := t.TempDir()
	var out []types.Model
	for _, id := range ids {
		out = append(out, types.Model{ID: id, Name: id, Path: writeModelFile(t, dir, id)})
	}
	return out
}
