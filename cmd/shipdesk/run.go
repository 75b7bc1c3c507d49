package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"

	"shipdesk-hq/gateway/pkg/api/handlers"
	"shipdesk-hq/gateway/pkg/cli"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/gateway"
	"shipdesk-hq/gateway/pkg/server"
	"shipdesk-hq/gateway/pkg/telemetry"
	"shipdesk-hq/gateway/pkg/telemetry/health"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

The server exposes the form API under /api, liveness and readiness under
/health and /ready, and Prometheus metrics under /metrics. The
configuration file is watched: list names, field names, the fallback
recipient and credentials are picked up without a restart.

Examples:
  # Start with config.yaml in the working directory
  shipdesk run

  # Start with a custom config
  shipdesk run --config /etc/shipdesk/config.yaml

  # Override listen address
  shipdesk run --listen 0.0.0.0:8080

  # Validate config without starting server
  shipdesk run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// applyRunFlags applies command-line overrides to cfg.
func applyRunFlags(cfg *config.Config) {
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()
	applyRunFlags(cfg)

	if err := config.ValidateRuntime(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	tel, err := telemetry.New(&cfg.Telemetry, Version)
	if err != nil {
		return cli.NewConfigError("telemetry", err.Error())
	}
	logger := tel.Logger()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Shipdesk v%s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Loading configuration from: %s\n", cfgFile)

	b := newBuilder(cfg, logger, tel.Metrics(), tel.Tracer())
	initial, err := b.build(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	var current atomic.Pointer[components]
	current.Store(initial)
	holder := gateway.NewHolder(initial.gateway)

	ctx := cli.SetupSignalHandler()

	checker := tel.Health()
	checker.RegisterCheck("identity", func(ctx context.Context) error {
		return current.Load().checkIdentity(ctx)
	})
	checker.RegisterCheck("liststore", func(ctx context.Context) error {
		return current.Load().checkListStore(ctx)
	})
	prober := health.NewProber(checker, cfg.Telemetry.Health.ProbeSchedule, logger)
	if err := prober.Start(ctx); err != nil {
		slog.Warn("readiness prober not started", "error", err)
	} else {
		defer prober.Stop()
	}

	watcher, err := config.NewWatcher(cfgFile, logger, func(next *config.Config) {
		applyRunFlags(next)
		if err := config.ValidateRuntime(next); err != nil {
			slog.Error("reloaded configuration rejected", "error", err)
			return
		}
		rebuilt, err := b.build(next)
		if err != nil {
			slog.Error("failed to apply reloaded configuration", "error", err)
			return
		}
		current.Store(rebuilt)
		holder.Swap(rebuilt.gateway)
		slog.Info("configuration reloaded",
			"primary_list", next.ListStore.PrimaryList,
			"secondary_list", next.ListStore.SecondaryList,
		)
	})
	if err != nil {
		slog.Warn("configuration file not watched", "path", cfgFile, "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("configuration watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	api := handlers.New(holder, handlers.WithLogger(logger))
	srvOpts := []server.Option{
		server.WithHealth(checker),
		server.WithTracer(tel.Tracer()),
		server.WithVersion(health.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}),
	}
	if m := tel.Metrics(); m != nil {
		srvOpts = append(srvOpts, server.WithMetrics(m, cfg.Telemetry.Metrics.Path))
	}
	srv := server.NewServer(&cfg.Server, api, srvOpts...)

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}
