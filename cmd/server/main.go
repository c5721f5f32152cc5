// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Command server runs the Tripgrid service: the trip event ingestion
// endpoint, the four analytic query endpoints, and the background
// prefix-index sweeper, all under one supervisor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tripgrid/tripgrid/internal/api"
	"github.com/tripgrid/tripgrid/internal/config"
	"github.com/tripgrid/tripgrid/internal/logging"
	"github.com/tripgrid/tripgrid/internal/query"
	"github.com/tripgrid/tripgrid/internal/store"
	"github.com/tripgrid/tripgrid/internal/tripindex"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("service exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(cfg.Redis)
	defer st.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
	err = st.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}
	logging.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("connected to redis")

	writer := tripindex.NewWriter(st, cfg.Index.SnapshotTTL)
	planner := query.NewPlanner(st)
	handler := api.NewHandler(writer, planner, st)
	router := api.NewRouter(handler, cfg.Server)

	slogger := slog.New(logging.NewSlogHandler())
	root := suture.New("tripgrid", suture.Spec{
		EventHook: (&sutureslog.Handler{Logger: slogger}).MustHook(),
		Timeout:   cfg.Server.ShutdownTimeout,
	})

	root.Add(&httpService{
		cfg:     cfg.Server,
		handler: router,
	})
	if cfg.Index.SweepEnabled {
		root.Add(tripindex.NewSweeper(st, cfg.Index.SweepInterval, cfg.Index.SweepRetention))
	}

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Bool("sweeper", cfg.Index.SweepEnabled).
		Msg("starting tripgrid")

	err = root.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		logging.Info().Msg("shutdown complete")
		return nil
	}
	return err
}

// httpService adapts the HTTP server to suture.Service. Listen failures
// restart under supervision; a clean shutdown removes the service.
type httpService struct {
	cfg     config.ServerConfig
	handler http.Handler
}

func (s *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("graceful shutdown incomplete, closing")
			_ = srv.Close()
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return err
	}
}

func (s *httpService) String() string {
	return "http-server"
}

var _ suture.Service = (*httpService)(nil)
