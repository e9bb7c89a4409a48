package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/comigor/homey-mcp/internal/config"
	"github.com/comigor/homey-mcp/internal/history"
	"github.com/comigor/homey-mcp/internal/logger"
	"github.com/comigor/homey-mcp/internal/metrics"
	"github.com/comigor/homey-mcp/internal/server"
	"github.com/comigor/homey-mcp/internal/session"
	"github.com/comigor/homey-mcp/pkg/tools"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewRecorder(reg)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg); err != nil {
				logger.L.Error("metrics listener failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	opts := []tools.Option{tools.WithObserver(rec.ObserveCall)}
	if cfg.History.DBPath != "" {
		journal, err := history.Open(cfg.History.DBPath)
		if err != nil {
			logger.L.Error("failed to open tool call journal", "path", cfg.History.DBPath, "error", err)
			return err
		}
		defer journal.Close()
		opts = append(opts, tools.WithObserver(journal.ObserveCall))
	}

	mgr := session.NewManager(
		session.Credentials{Address: cfg.Homey.Address(), Token: cfg.Homey.Token},
		session.WithConnectObserver(rec.ObserveConnect),
		session.WithStateObserver(func(s session.State) { rec.ObserveSessionState(string(s)) }),
	)
	dispatcher := tools.NewDispatcher(mgr, opts...)

	return server.New(cfg.Server, dispatcher).Serve(ctx, os.Stdin, os.Stdout)
}
