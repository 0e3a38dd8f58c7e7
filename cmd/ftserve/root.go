package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ftserve/internal/config"
	"ftserve/internal/logging"
	"ftserve/internal/manager"
	"ftserve/internal/registry"
	"ftserve/pkg/types"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	engine     string
	bin        string
	modelsDir  string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ftserve",
		Short:         "Serve, query and train fastText models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; real environment variables win.
			_ = godotenv.Load()
		},
	}

	opts.bind(root)

	root.AddCommand(
		newServeCmd(opts),
		newPredictCmd(opts),
		newVectorCmd(opts),
		newTestCmd(opts),
		newTrainCmd(opts),
		newInfoCmd(opts),
		newModelsCmd(opts),
		newSanityCmd(opts),
	)
	return root
}

// bind registers the shared flags as persistent flags of cmd.
func (o *rootOptions) bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (.yaml, .json or .toml); default $FTSERVE_CONFIG")
	pf.StringVar(&o.engine, "engine", "", "Engine: cli|native (default cli)")
	pf.StringVar(&o.bin, "fasttext-bin", "", "fastText executable for the cli engine (default: PATH lookup)")
	pf.StringVar(&o.modelsDir, "models-dir", "", "Directory scanned for *.bin/*.ftz models")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	pf.StringVar(&o.logFormat, "log-format", "", "Log format: json|console")
}

// resolve builds the effective configuration: defaults, then the config
// file, then FTSERVE_* variables, then flags set on the command line.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	path := o.configPath
	if path == "" {
		path = os.Getenv("FTSERVE_CONFIG")
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	cfg, err := cfg.ApplyEnv()
	if err != nil {
		return cfg, err
	}
	set := func(name string, dst *string, v string) {
		if f := cmd.Flag(name); f != nil && f.Changed {
			*dst = v
		}
	}
	set("engine", &cfg.Engine, o.engine)
	set("fasttext-bin", &cfg.FastTextBin, o.bin)
	set("models-dir", &cfg.ModelsDir, o.modelsDir)
	set("log-level", &cfg.LogLevel, o.logLevel)
	set("log-format", &cfg.LogFormat, o.logFormat)
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
}

// newManager builds a manager for cfg. The registry is scanned only when
// scan is set; a missing models directory is logged, not fatal.
func newManager(cfg config.Config, log zerolog.Logger, scan bool) (*manager.Manager, error) {
	var models []types.Model
	if scan {
		var err error
		if models, err = registry.LoadDir(cfg.ModelsDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.ModelsDir).Msg("model registry unavailable")
		}
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Registry:       models,
		DefaultModel:   cfg.DefaultModel,
		LoadBundled:    cfg.LoadBundled,
		TempDir:        cfg.TempDir,
		Engine:         cfg.Engine,
		FastTextBin:    cfg.FastTextBin,
		NormalizeInput: cfg.NormalizeInput,
		WatchModel:     cfg.WatchModel,
		Logger:         log,
	})
}
