package fasttext

import "ftserve/internal/engine"

// Hyperparameters is the read-only snapshot of a loaded model's arguments.
type Hyperparameters = engine.Args

// Hyperparameters returns every hyperparameter in one engine call.
func (m *Model) Hyperparameters() (Hyperparameters, error) {
	if err := m.requireLoaded(); err != nil {
		return Hyperparameters{}, err
	}
	return m.eng.Args()
}

// Words returns the model vocabulary (labels excluded).
func (m *Model) Words() ([]string, error) {
	if err := m.requireLoaded(); err != nil {
		return nil, err
	}
	return m.eng.Words()
}

// Labels returns the model's labels including their prefix.
func (m *Model) Labels() ([]string, error) {
	if err := m.requireLoaded(); err != nil {
		return nil, err
	}
	return m.eng.Labels()
}

// NWords returns the vocabulary size.
func (m *Model) NWords() (int, error) {
	w, err := m.Words()
	return len(w), err
}

// NLabels returns the number of labels.
func (m *Model) NLabels() (int, error) {
	l, err := m.Labels()
	return len(l), err
}

// LR returns the learning rate (-lr).
func (m *Model) LR() (float64, error) {
	a, err := m.Hyperparameters()
	return a.LR, err
}

// LRUpdateRate returns how often the learning rate is updated (-lrUpdateRate).
func (m *Model) LRUpdateRate() (int, error) {
	a, err := m.Hyperparameters()
	return a.LRUpdateRate, err
}

// Dim returns the vector dimension (-dim).
func (m *Model) Dim() (int, error) {
	a, err := m.Hyperparameters()
	return a.Dim, err
}

// ContextWindowSize returns the context window size (-ws).
func (m *Model) ContextWindowSize() (int, error) {
	a, err := m.Hyperparameters()
	return a.WS, err
}

// Epoch returns the number of training epochs (-epoch).
func (m *Model) Epoch() (int, error) {
	a, err := m.Hyperparameters()
	return a.Epoch, err
}

// MinCount returns the minimum word occurrence count (-minCount).
func (m *Model) MinCount() (int, error) {
	a, err := m.Hyperparameters()
	return a.MinCount, err
}

// MinCountLabel returns the minimum label occurrence count (-minCountLabel).
func (m *Model) MinCountLabel() (int, error) {
	a, err := m.Hyperparameters()
	return a.MinCountLabel, err
}

// NSampledNegatives returns the number of sampled negatives (-neg).
func (m *Model) NSampledNegatives() (int, error) {
	a, err := m.Hyperparameters()
	return a.Neg, err
}

// WordNgrams returns the maximum word n-gram length (-wordNgrams).
func (m *Model) WordNgrams() (int, error) {
	a, err := m.Hyperparameters()
	return a.WordNgrams, err
}

// LossName returns the loss function: ns, hs, softmax or ova.
func (m *Model) LossName() (string, error) {
	a, err := m.Hyperparameters()
	return a.Loss, err
}

// ModelName returns the model kind: sup, cbow or sg.
func (m *Model) ModelName() (string, error) {
	a, err := m.Hyperparameters()
	return a.Model, err
}

// Bucket returns the number of n-gram hash buckets (-bucket).
func (m *Model) Bucket() (int, error) {
	a, err := m.Hyperparameters()
	return a.Bucket, err
}

// Minn returns the minimum character n-gram length (-minn).
func (m *Model) Minn() (int, error) {
	a, err := m.Hyperparameters()
	return a.Minn, err
}

// Maxn returns the maximum character n-gram length (-maxn).
func (m *Model) Maxn() (int, error) {
	a, err := m.Hyperparameters()
	return a.Maxn, err
}

// SamplingThreshold returns the sampling threshold (-t).
func (m *Model) SamplingThreshold() (float64, error) {
	a, err := m.Hyperparameters()
	return a.T, err
}

// LabelPrefix returns the label prefix (-label).
func (m *Model) LabelPrefix() (string, error) {
	a, err := m.Hyperparameters()
	return a.Label, err
}

// PretrainedVectorsFileName returns the -pretrainedVectors path used in training.
func (m *Model) PretrainedVectorsFileName() (string, error) {
	a, err := m.Hyperparameters()
	return a.PretrainedVectors, err
}
