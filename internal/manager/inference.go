package manager

import (
	"bytes"

	"golang.org/x/text/unicode/norm"

	"ftserve/internal/common/fsutil"
	"ftserve/internal/fasttext"
	"ftserve/pkg/types"
)

// query runs fn against the facade under the read lock.
func (m *Manager) query(op string, fn func(*fasttext.Model) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return m.observe(op, func() error { return fn(m.model) })
}

// text applies the configured input normalization.
func (m *Manager) text(s string) string {
	if m.normalize {
		return norm.NFC.String(s)
	}
	return s
}

// Predict returns up to k labels with probability at least threshold, best
// first. Label is the best label or "und". k below 1 is an invalid argument.
func (m *Manager) Predict(text string, k int, threshold float32) (types.PredictResponse, error) {
	var resp types.PredictResponse
	err := m.query("predict", func(md *fasttext.Model) error {
		preds, err := md.PredictTopK(m.text(text), k, threshold)
		if err != nil {
			return err
		}
		resp.Predictions = make([]types.Prediction, len(preds))
		for i, p := range preds {
			resp.Predictions[i] = types.Prediction{Label: p.Label, LogProb: p.LogProb, Probability: fasttext.Prob(p)}
		}
		return nil
	})
	if err != nil {
		return types.PredictResponse{}, err
	}
	resp.Label = fasttext.UndeterminedLabel
	if len(resp.Predictions) > 0 {
		resp.Label = resp.Predictions[0].Label
	}
	return resp, nil
}

// Vector returns one embedding of text.
func (m *Manager) Vector(kind VectorKind, text string) (types.VectorResponse, error) {
	var vec []float32
	err := m.query("vector_"+string(kind), func(md *fasttext.Model) error {
		var err error
		switch kind {
		case VectorWord:
			vec, err = md.WordVector(m.text(text))
		case VectorSentence:
			vec, err = md.SentenceVector(m.text(text))
		case VectorSubword:
			vec, err = md.SubwordVector(m.text(text))
		default:
			err = ErrBadRequest("unknown vector kind: " + string(kind))
		}
		return err
	})
	if err != nil {
		return types.VectorResponse{}, err
	}
	return types.VectorResponse{Text: text, Vector: vec, Dim: len(vec)}, nil
}

// Info describes the loaded model.
func (m *Manager) Info() (types.ModelInfo, error) {
	var info types.ModelInfo
	err := m.query("info", func(md *fasttext.Model) error {
		hp, err := md.Hyperparameters()
		if err != nil {
			return err
		}
		if info.NWords, err = md.NWords(); err != nil {
			return err
		}
		if info.NLabels, err = md.NLabels(); err != nil {
			return err
		}
		info.Path = md.Path()
		info.Bundled = md.Bundled()
		info.Args = types.Hyperparameters(hp)
		return nil
	})
	return info, err
}

// Words returns the vocabulary of the loaded model.
func (m *Manager) Words() ([]string, error) {
	var out []string
	err := m.query("words", func(md *fasttext.Model) (err error) {
		out, err = md.Words()
		return err
	})
	return out, err
}

// Labels returns the labels of the loaded model.
func (m *Manager) Labels() ([]string, error) {
	var out []string
	err := m.query("labels", func(md *fasttext.Model) (err error) {
		out, err = md.Labels()
		return err
	})
	return out, err
}

// Test evaluates the loaded model on a labelled file and returns the report
// the engine printed. Engines that print elsewhere (native) return an empty
// report. Test holds the write lock so the report is not interleaved.
func (m *Manager) Test(path string, k int) (types.TestResponse, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return types.TestResponse{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return types.TestResponse{}, ErrClosed
	}
	if m.model.Loaded() && !fsutil.IsReadableFile(p) {
		return types.TestResponse{}, fasttext.ErrFileNotFound(p)
	}
	var buf bytes.Buffer
	prev := m.report.swap(&buf)
	err = m.observe("test", func() error { return m.model.Test(p, k) })
	m.report.swap(prev)
	if err != nil {
		return types.TestResponse{}, err
	}
	id := ""
	if m.cur != nil {
		id = m.cur.ID
	}
	m.publish(EventTestDone, id, newOpID(), map[string]any{"path": p, "k": k})
	return types.TestResponse{Report: buf.String()}, nil
}
