package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ftserve/internal/config"
	"ftserve/internal/httpapi"
)

type serveOptions struct {
	addr         string
	defaultModel string
	loadBundled  bool
	watch        bool
	normalize    bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			return serve(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.defaultModel, "default-model", "", "Model id or path loaded at startup")
	f.BoolVar(&opts.loadBundled, "load-bundled", false, "Load the bundled language-id model when no default model is set")
	f.BoolVar(&opts.watch, "watch", false, "Reload the model when its file changes")
	f.BoolVar(&opts.normalize, "normalize", false, "NFC-normalize input text")
	return cmd
}

func (o *serveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr = o.addr
	}
	if f.Changed("default-model") {
		cfg.DefaultModel = o.defaultModel
	}
	if f.Changed("load-bundled") {
		cfg.LoadBundled = o.loadBundled
	}
	if f.Changed("watch") {
		cfg.WatchModel = o.watch
	}
	if f.Changed("normalize") {
		cfg.NormalizeInput = o.normalize
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg)
	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetTrainRatePerMinute(cfg.TrainRatePerMin)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)

	mgr, err := newManager(cfg, log, true)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()
	// A failed startup load leaves the service up in the error state so
	// /status can report it and a later load can recover.
	if err := mgr.Bootstrap(); err != nil {
		log.Error().Err(err).Msg("startup model load failed")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Str("engine", cfg.Engine).Msg("ftserve listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
