package manager

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ftserve/internal/config"
	"ftserve/internal/engine"
	"ftserve/internal/engine/cli"
	"ftserve/internal/engine/native"
	"ftserve/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultWatchDebounce = 500 * time.Millisecond
)

// EngineFactory builds a fresh engine. out receives output the engine
// reports itself (test metrics, training progress).
type EngineFactory func(out io.Writer) (engine.Engine, error)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	DefaultModel string // registry id or path loaded by Bootstrap
	LoadBundled  bool   // Bootstrap falls back to the bundled model
	TempDir      string // where the bundled model is extracted

	Engine      string // config.EngineCLI (default) or config.EngineNative
	FastTextBin string
	// NewEngine overrides Engine/FastTextBin; used by tests.
	NewEngine EngineFactory
	// TrainOutput receives training progress. Default os.Stderr.
	TrainOutput io.Writer

	NormalizeInput bool // NFC-normalize text before it reaches the engine
	WatchModel     bool // reload the model when its file changes
	WatchDebounce  time.Duration

	Logger    zerolog.Logger
	Publisher EventPublisher
}

// EngineFactoryFor returns the factory for an engine kind.
func EngineFactoryFor(kind, bin string, stderr io.Writer, log zerolog.Logger) (EngineFactory, error) {
	switch kind {
	case "", config.EngineCLI:
		return func(out io.Writer) (engine.Engine, error) {
			return cli.New(cli.Config{Bin: bin, Stdout: out, Stderr: stderr, Logger: log}), nil
		}, nil
	case config.EngineNative:
		return func(io.Writer) (engine.Engine, error) {
			e, err := native.New()
			if err != nil {
				return nil, err
			}
			return e, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}

// NewWithConfig constructs a Manager from ManagerConfig. It fails when the
// selected engine cannot be constructed (e.g. native support not built).
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	kind := cfg.Engine
	if kind == "" {
		kind = config.EngineCLI
	}
	factory := cfg.NewEngine
	if factory == nil {
		var err error
		factory, err = EngineFactoryFor(kind, cfg.FastTextBin, os.Stderr, cfg.Logger)
		if err != nil {
			return nil, err
		}
	}
	m := &Manager{
		state:         StateUnloaded,
		registry:      append([]types.Model(nil), cfg.Registry...),
		defaultModel:  cfg.DefaultModel,
		loadBundled:   cfg.LoadBundled,
		tempDir:       cfg.TempDir,
		engineKind:    kind,
		newEngine:     factory,
		trainOut:      cfg.TrainOutput,
		normalize:     cfg.NormalizeInput,
		watchEnabled:  cfg.WatchModel,
		watchDebounce: cfg.WatchDebounce,
		report:        &reportWriter{w: io.Discard},
		publisher:     cfg.Publisher,
		log:           cfg.Logger,
		startTime:     time.Now(),
	}
	// Apply defaults if unset
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.trainOut == nil {
		m.trainOut = os.Stderr
	}
	if m.watchDebounce <= 0 {
		m.watchDebounce = defaultWatchDebounce
	}
	eng, err := factory(m.report)
	if err != nil {
		return nil, err
	}
	m.eng = eng
	m.model = newFacade(m)
	return m, nil
}
