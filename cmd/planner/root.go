// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianPlan/services/planner/config"
	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// cli holds state shared by all subcommands of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	trace       bool
	metricsAddr string

	cfg      config.Config
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	shutdown func(context.Context) error
	server   *http.Server
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Forward state-space planner for ground STRIPS/ADL tasks",
		Long: `planner solves ground planning tasks given as YAML or JSON documents.

Engines: weighted A* with a relaxed-plan heuristic, online Monte Carlo
rollouts, and breadth-first search as a reference.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML or JSON config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "write trace spans to stderr")
	root.PersistentFlags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(c.newSolveCmd(), c.newValidateCmd(), c.newBenchCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return &exitCodeError{code: exitInvalid, err: err}
	}
	if c.logLevel != "" {
		cfg.Observability.LogLevel = c.logLevel
	}
	if c.metricsAddr != "" {
		cfg.Observability.MetricsAddr = c.metricsAddr
	}
	level, err := config.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return &exitCodeError{code: exitInvalid, err: err}
	}
	c.cfg = cfg
	c.logger = newLogger(c.stderr, level)
	slog.SetDefault(c.logger)

	tel := cfg.Telemetry()
	if c.trace {
		tel.TraceExporter = "stdout"
		tel.TraceWriter = c.stderr
	}
	if cfg.Observability.MetricsAddr != "" {
		tel.MetricExporter = "prometheus"
	}
	shutdown, err := telemetry.Init(cmd.Context(), tel)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	c.shutdown = shutdown

	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.MeterName))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}
	c.metrics = metrics

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		if err := c.serveMetrics(addr); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) serveMetrics(addr string) error {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return errors.New("prometheus exporter not initialized")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	c.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	c.logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return nil
}

// teardown stops the metrics server and flushes telemetry. It runs after
// every command, including failed ones.
func (c *cli) teardown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	if c.server != nil {
		errs = append(errs, c.server.Shutdown(ctx))
		c.server = nil
	}
	if c.shutdown != nil {
		errs = append(errs, c.shutdown(ctx))
		c.shutdown = nil
	}
	return errors.Join(errs...)
}

// newLogger returns a text handler on a terminal and a JSON handler
// otherwise.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
