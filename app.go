// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/cliparse"
	"github.com/danielhkuo/stackit/optimistic"
	"github.com/danielhkuo/stackit/session"
)

// app carries everything a command needs. It is built once per invocation.
type app struct {
	cfg    cliparse.Config
	cfgErr error

	in     io.Reader
	stdin  *bufio.Reader
	out    io.Writer
	errOut io.Writer

	logger   *slog.Logger
	store    *session.Store
	sess     *session.Session
	api      *client.Client
	registry *prometheus.Registry
	metrics  *optimistic.Metrics
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{in: in, out: out, errOut: errOut}
	if err := cliparse.LoadDotEnv(""); err != nil {
		a.cfgErr = err
		return a
	}
	a.cfg, a.cfgErr = cliparse.FromEnv()
	return a
}

func (a *app) newLogger() *slog.Logger {
	level := slog.LevelWarn
	if a.cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

// setup validates the configuration, restores the saved session and builds
// the API client bound to it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgErr != nil {
		return a.cfgErr
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger = a.newLogger()

	a.registry = prometheus.NewRegistry()
	metrics, err := optimistic.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	a.metrics = metrics

	ctx := cmd.Context()
	store, err := session.OpenStore(ctx, a.cfg.SessionDBType, a.cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	a.store = store

	a.sess = session.New(a.cfg.APIURL, store, a.logger)
	if err := a.sess.Restore(ctx); err != nil {
		a.logger.Warn("could not restore session", "error", err)
	}

	a.api, err = client.New(a.cfg.APIURL,
		client.WithTimeout(a.cfg.Timeout),
		client.WithRateLimit(a.cfg.RateLimit),
		client.WithTokenSource(a.sess.Token),
		client.WithLogger(a.logger),
	)
	return err
}

// close releases what setup opened. It is safe to call after a failed setup.
func (a *app) close() {
	a.logMetrics()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close session database", "error", err)
		}
	}
}

// logMetrics writes the mutation counters at debug level.
func (a *app) logMetrics() {
	if a.registry == nil || !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Debug("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			a.logger.Debug("mutation counter", attrs...)
		}
	}
}

// mutatorOptions are passed to every optimistic view.
func (a *app) mutatorOptions() []optimistic.Option {
	return []optimistic.Option{optimistic.WithLogger(a.logger), optimistic.WithMetrics(a.metrics)}
}

// requireLogin fails fast when no usable token is stored.
func (a *app) requireLogin() error {
	if !a.sess.LoggedIn() {
		return fmt.Errorf("%s (run `stackit login`)", client.MsgLoginRequired)
	}
	return nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

// exactIDs wraps cobra.ExactArgs and checks every argument is a positive id.
func exactIDs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return err
		}
		for i, arg := range args {
			if _, err := parseID(arg, names[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// mustID parses an argument already checked by exactIDs.
func mustID(arg string) int64 {
	id, _ := strconv.ParseInt(arg, 10, 64)
	return id
}
