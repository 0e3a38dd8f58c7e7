// Package cli implements engine.Engine on top of the fastText command-line
// binary. Every query spawns one short-lived process against the model path
// captured at load time; hyperparameters and the dictionary are read once
// during LoadModel and cached.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ftserve/internal/engine"
)

// Config configures the subprocess engine.
type Config struct {
	// Bin is the fastText executable. Empty means "fasttext" resolved via PATH.
	Bin string
	// Stdout and Stderr receive output of commands whose results are reported
	// by fastText itself (training progress, test metrics). Default: os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger
}

// Engine is a subprocess-backed fastText engine.
type Engine struct {
	cfg Config

	modelPath string
	args      engine.Args
	words     []string
	labels    []string
	loaded    bool
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine. The binary is resolved lazily on first use.
func New(cfg Config) *Engine {
	if strings.TrimSpace(cfg.Bin) == "" {
		cfg.Bin = engine.ProgramName
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Engine{cfg: cfg}
}

// Bin returns the resolved executable path, or an error when it cannot be found.
func (e *Engine) Bin() (string, error) {
	p, err := exec.LookPath(e.cfg.Bin)
	if err != nil {
		return "", engine.ErrDependencyUnavailable(fmt.Sprintf("fasttext binary %q not found: %v", e.cfg.Bin, err))
	}
	return p, nil
}

// RunCommand executes argv[1:] with the fastText binary, streaming its output.
func (e *Engine) RunCommand(argv []string) error {
	if len(argv) > 0 && argv[0] == engine.ProgramName {
		argv = argv[1:]
	}
	bin, err := e.Bin()
	if err != nil {
		return err
	}
	e.cfg.Logger.Debug().Str("bin", bin).Strs("args", argv).Msg("fasttext command")
	cmd := exec.Command(bin, argv...)
	cmd.Stdout = e.cfg.Stdout
	cmd.Stderr = e.cfg.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("fasttext %s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

func (e *Engine) CheckModel(path string) bool { return engine.CheckModelFile(path) }

// LoadModel reads hyperparameters and the dictionary through `fasttext dump`.
// On any failure the engine stays unloaded.
func (e *Engine) LoadModel(path string) error {
	e.UnloadModel()
	out, err := e.output("", "dump", path, "args")
	if err != nil {
		return err
	}
	args, err := parseArgsDump(out)
	if err != nil {
		return fmt.Errorf("parse args dump: %w", err)
	}
	out, err = e.output("", "dump", path, "dict")
	if err != nil {
		return err
	}
	words, labels, err := parseDictDump(out)
	if err != nil {
		return fmt.Errorf("parse dict dump: %w", err)
	}
	e.modelPath = path
	e.args = args
	e.words = words
	e.labels = labels
	e.loaded = true
	e.cfg.Logger.Debug().Str("model", path).Int("dim", args.Dim).Int("words", len(words)).Int("labels", len(labels)).Msg("fasttext model loaded")
	return nil
}

func (e *Engine) IsModelLoaded() bool { return e.loaded }

func (e *Engine) UnloadModel() {
	e.modelPath = ""
	e.args = engine.Args{}
	e.words = nil
	e.labels = nil
	e.loaded = false
}

func (e *Engine) Test(path string, k int) error {
	if !e.loaded {
		return engine.ErrNoModel
	}
	return e.RunCommand([]string{engine.ProgramName, "test", e.modelPath, path, strconv.Itoa(k)})
}

// PredictProba runs `predict-prob` over a single line of text. fastText prints
// probabilities; they are converted to natural logs here.
func (e *Engine) PredictProba(text string, k int, threshold float32) ([]engine.Prediction, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	th := strconv.FormatFloat(float64(threshold), 'g', -1, 32)
	out, err := e.output(oneLine(text), "predict-prob", e.modelPath, "-", strconv.Itoa(k), th)
	if err != nil {
		return nil, err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	fields := strings.Fields(line)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("predict-prob: odd field count in %q", line)
	}
	preds := make([]engine.Prediction, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		p, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("predict-prob: bad probability %q: %w", fields[i+1], err)
		}
		preds = append(preds, engine.Prediction{Label: fields[i], LogProb: float32(math.Log(p))})
	}
	return preds, nil
}

func (e *Engine) WordVector(word string) ([]float32, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	out, err := e.output(word+"\n", "print-word-vectors", e.modelPath)
	if err != nil {
		return nil, err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return make([]float32, e.args.Dim), nil
	}
	return parseVector(fields[1:], e.args.Dim)
}

func (e *Engine) SentenceVector(text string) ([]float32, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	out, err := e.output(oneLine(text), "print-sentence-vectors", e.modelPath)
	if err != nil {
		return nil, err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return parseVector(strings.Fields(line), e.args.Dim)
}

// SubwordVector looks the fragment up among the n-grams fastText computes for
// it. The fragment's own bucket row is the last n-gram line equal to the
// fragment. The binary only prints n-grams of length minn..maxn, so other
// fragments (and every fragment when maxn is 0) yield zeros here, while the
// native engine hashes any fragment into its bucket row.
func (e *Engine) SubwordVector(subword string) ([]float32, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	if subword == "" || strings.ContainsAny(subword, " \t\n") || e.args.Maxn <= 0 {
		return make([]float32, e.args.Dim), nil
	}
	out, err := e.output("", "print-ngrams", e.modelPath, subword)
	if err != nil {
		return nil, err
	}
	var match []string
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == subword {
			match = fields[1:]
		}
	}
	if match == nil {
		return make([]float32, e.args.Dim), nil
	}
	return parseVector(match, e.args.Dim)
}

func (e *Engine) Words() ([]string, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	return append([]string(nil), e.words...), nil
}

func (e *Engine) Labels() ([]string, error) {
	if !e.loaded {
		return nil, engine.ErrNoModel
	}
	return append([]string(nil), e.labels...), nil
}

func (e *Engine) Args() (engine.Args, error) {
	if !e.loaded {
		return engine.Args{}, engine.ErrNoModel
	}
	return e.args, nil
}

// output runs the binary with stdin and returns captured stdout.
func (e *Engine) output(stdin string, args ...string) ([]byte, error) {
	bin, err := e.Bin()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(bin, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var ee *exec.ExitError
		if errors.As(err, &ee) && msg != "" {
			return nil, fmt.Errorf("fasttext %s: %s", args[0], msg)
		}
		return nil, fmt.Errorf("fasttext %s: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}

// oneLine flattens text so fastText sees exactly one example.
func oneLine(text string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text) + "\n"
}
