package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/padctl/padctl/internal/config"
	"github.com/padctl/padctl/internal/logging"
	"github.com/padctl/padctl/internal/metrics"
	"github.com/padctl/padctl/pkg/input"
	"github.com/padctl/padctl/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		host     string
		pin      string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon",
		Long: `Start the padctl daemon and wait for controlling peers.

The daemon reads padctl.json from the working directory when present;
flags and PADCTL_* environment variables override it.

Examples:
  padctld serve
  padctld serve --port=9100
  padctld serve --pin=4821`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, pin, logLevel)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from padctl.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Address to bind to (default from padctl.json)")
	cmd.Flags().StringVar(&pin, "pin", "", "Pairing PIN (default from padctl.json or PADCTL_PIN)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

func runServe(port int, host, pin, logLevel string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}
	if pin != "" {
		cfg.PIN = pin
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	m := metrics.New()
	synth := input.NewSynthesizer(input.NewLogInjector(logger), logger)
	synth.UpdateConfig(cfg.Sensitivity, cfg.ScrollSpeed)

	registry := server.NewRegistry(
		server.DefaultConfig().
			WithPIN(cfg.PIN).
			WithMaxPeers(cfg.MaxPeers),
		synth, m, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Handle("/ws", registry)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d peers\n", registry.PeerCount())
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("daemon listening", "addr", addr, "name", cfg.Name)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	success("padctld listening on %s", addr)
	info("pair a device with PIN %s", cfg.PIN)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := registry.Shutdown(ctx); err != nil {
		logger.Warn("registry shutdown incomplete", "error", err)
	}
	return httpServer.Shutdown(ctx)
}
