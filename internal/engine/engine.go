// Package engine defines the capability surface of a fastText runtime.
//
// The engine owns everything model-internal: training, the binary model
// format, tokenization and vector arithmetic. Callers above this package only
// see the small Engine interface. Two implementations exist:
//
//   - engine/cli: drives the fastText command-line binary as a subprocess.
//     Always built; requires a `fasttext` executable at runtime.
//   - engine/native: in-process cgo binding to libfasttext.
//     Enabled with `-tags=fasttext`; a stub is compiled otherwise.
//
// Implementations are not safe for concurrent use.
package engine

import (
	"encoding/binary"
	"io"
	"os"
)

// ProgramName is prepended to training argument lists so engines whose entry
// point mirrors a C main() see a conventional argv[0].
const ProgramName = "fasttext"

// Binary model header constants understood by this build.
const (
	FileFormatMagic   int32 = 793712314
	FileFormatVersion int32 = 12
)

// Engine is the opaque fastText capability used by the facade.
type Engine interface {
	// RunCommand forwards a C-style argv (argv[0] is the program name).
	RunCommand(argv []string) error
	// CheckModel reports whether path holds a model this engine can read.
	// Missing and malformed files both report false.
	CheckModel(path string) bool
	LoadModel(path string) error
	IsModelLoaded() bool
	UnloadModel()
	// Test runs a held-out evaluation and reports metrics on the engine's
	// own output stream.
	Test(path string, k int) error
	// PredictProba returns up to k labels with natural-log probabilities,
	// best first, skipping labels whose probability is below threshold.
	PredictProba(text string, k int, threshold float32) ([]Prediction, error)
	WordVector(word string) ([]float32, error)
	SentenceVector(text string) ([]float32, error)
	SubwordVector(subword string) ([]float32, error)
	Words() ([]string, error)
	Labels() ([]string, error)
	Args() (Args, error)
}

// Prediction is a single label with its log probability.
type Prediction struct {
	LogProb float32 `json:"log_prob"`
	Label   string  `json:"label"`
}

// Args holds the hyperparameters a model was trained with.
type Args struct {
	LR                float64 `json:"lr" yaml:"lr"`
	LRUpdateRate      int     `json:"lr_update_rate" yaml:"lr_update_rate"`
	Dim               int     `json:"dim" yaml:"dim"`
	WS                int     `json:"ws" yaml:"ws"`
	Epoch             int     `json:"epoch" yaml:"epoch"`
	MinCount          int     `json:"min_count" yaml:"min_count"`
	MinCountLabel     int     `json:"min_count_label" yaml:"min_count_label"`
	Neg               int     `json:"neg" yaml:"neg"`
	WordNgrams        int     `json:"word_ngrams" yaml:"word_ngrams"`
	Loss              string  `json:"loss" yaml:"loss"`
	Model             string  `json:"model" yaml:"model"`
	Bucket            int     `json:"bucket" yaml:"bucket"`
	Minn              int     `json:"minn" yaml:"minn"`
	Maxn              int     `json:"maxn" yaml:"maxn"`
	T                 float64 `json:"t" yaml:"t"`
	Label             string  `json:"label" yaml:"label"`
	PretrainedVectors string  `json:"pretrained_vectors" yaml:"pretrained_vectors"`
}

// DefaultArgs returns the values fastText assigns to hyperparameters that are
// not persisted in the model file (lr, label prefix, minCountLabel,
// pretrained vectors). Persisted fields are zero and must be overwritten.
func DefaultArgs() Args {
	return Args{
		LR:    0.05,
		Label: "__label__",
	}
}

// CheckModelFile probes the 8-byte little-endian header of path.
func CheckModelFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var hdr [2]int32
	if err := binary.Read(io.LimitReader(f, 8), binary.LittleEndian, &hdr); err != nil {
		return false
	}
	return hdr[0] == FileFormatMagic && hdr[1] <= FileFormatVersion
}
