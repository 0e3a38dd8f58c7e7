package fasttext

import (
	"fmt"
	"math"
	"sort"

	"ftserve/internal/engine"
)

// UndeterminedLabel is returned when no label survives prediction.
const UndeterminedLabel = "und"

// Prediction is one label with its natural-log probability.
type Prediction = engine.Prediction

// Undetermined is the sentinel returned by PredictWithProbability when no
// candidate survives.
var Undetermined = Prediction{LogProb: 0, Label: UndeterminedLabel}

// Prob returns the linear probability of p.
func Prob(p Prediction) float64 { return math.Exp(float64(p.LogProb)) }

func checkK(k int) error {
	if k <= 0 {
		return ErrInvalidArgument(fmt.Sprintf("k must be positive, got %d", k))
	}
	return nil
}

// Test runs a held-out evaluation over path at k. Metrics are reported by the
// engine on its own output stream.
func (m *Model) Test(path string, k int) error {
	if err := m.requireLoaded(); err != nil {
		return err
	}
	if err := checkK(k); err != nil {
		return err
	}
	return m.eng.Test(path, k)
}

// PredictTopK returns at most k predictions with probability >= threshold,
// ordered by descending probability. Engine order is kept among ties.
func (m *Model) PredictTopK(text string, k int, threshold float32) ([]Prediction, error) {
	if err := m.requireLoaded(); err != nil {
		return nil, err
	}
	if err := checkK(k); err != nil {
		return nil, err
	}
	raw, err := m.eng.PredictProba(text, k, threshold)
	if err != nil {
		return nil, err
	}
	return rank(raw, k, threshold), nil
}

// logProbTolerance absorbs the round-off of a probability that went through
// a float32 natural log (and, for the cli engine, a 6-digit decimal print).
const logProbTolerance = 1e-5

// rank reapplies threshold and k to engine output in any order. The threshold
// is compared in log space so a probability equal to it is kept.
func rank(raw []Prediction, k int, threshold float32) []Prediction {
	out := make([]Prediction, 0, min(len(raw), k))
	minLog := math.Inf(-1)
	if threshold > 0 {
		minLog = math.Log(float64(threshold)) - logProbTolerance
	}
	for _, p := range raw {
		if float64(p.LogProb) < minLog {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LogProb > out[j].LogProb })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// PredictLabels is PredictTopK without probabilities.
func (m *Model) PredictLabels(text string, k int, threshold float32) ([]string, error) {
	preds, err := m.PredictTopK(text, k, threshold)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(preds))
	for i, p := range preds {
		labels[i] = p.Label
	}
	return labels, nil
}

// PredictWithProbability returns the best prediction, or Undetermined.
func (m *Model) PredictWithProbability(text string) (Prediction, error) {
	preds, err := m.PredictTopK(text, 1, 0)
	if err != nil {
		return Prediction{}, err
	}
	if len(preds) == 0 {
		return Undetermined, nil
	}
	return preds[0], nil
}

// PredictLabel returns the best label, or UndeterminedLabel.
func (m *Model) PredictLabel(text string) (string, error) {
	p, err := m.PredictWithProbability(text)
	if err != nil {
		return "", err
	}
	return p.Label, nil
}

// WordVector returns the embedding of word. Out-of-vocabulary and empty words
// still yield a vector of length Dim.
func (m *Model) WordVector(word string) ([]float32, error) {
	return m.vector(m.eng.WordVector, word)
}

// SentenceVector returns the engine's aggregate embedding of text.
func (m *Model) SentenceVector(text string) ([]float32, error) {
	return m.vector(m.eng.SentenceVector, text)
}

// SubwordVector returns the embedding of a character n-gram fragment.
func (m *Model) SubwordVector(fragment string) ([]float32, error) {
	return m.vector(m.eng.SubwordVector, fragment)
}

func (m *Model) vector(fn func(string) ([]float32, error), s string) ([]float32, error) {
	if err := m.requireLoaded(); err != nil {
		return nil, err
	}
	return fn(s)
}
