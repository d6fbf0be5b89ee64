// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/router"
	"github.com/danielhkuo/quickly-elect/store"
	"github.com/danielhkuo/quickly-elect/voterpass"
)

const (
	passSweepInterval = time.Minute
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func run(ctx context.Context, cfg cliparse.Config) error {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "dialect", dialect)

	g, ctx := errgroup.WithContext(ctx)

	// Voter passes live in Redis when configured so every replica sees them
	var passes voterpass.Store
	if cfg.RedisURL != "" {
		client, err := voterpass.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		if passes, err = voterpass.NewRedisStore(client, cfg.VoterPassTTL); err != nil {
			return err
		}
		slog.Info("Voter passes stored in Redis")
	} else {
		mem, err := voterpass.NewMemoryStore(cfg.VoterPassTTL)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := mem.StartCleanup(ctx, passSweepInterval); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		passes = mem
	}

	var publisher audit.Publisher = audit.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		publisher = kp
		slog.Info("Audit events published to Kafka", "topic", cfg.AuditTopic)
	}
	defer publisher.Close()

	var images imagestore.Store = imagestore.Noop{}
	if cfg.ImageStoreURL != "" {
		images = imagestore.NewHTTPStore(cfg.ImageStoreURL, cfg.ImageStoreKey)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	st := store.New(dbConn, dialect, store.WithStudentIDPrefix(cfg.StudentIDPrefix))
	svc := election.NewService(st, passes, publisher, m, election.Config{
		IPHashSalt:     cfg.IPHashSalt,
		ShowLiveCounts: cfg.ShowLiveCounts,
	})

	mux := router.NewRouter(router.Deps{
		Store:    st,
		Service:  svc,
		Admin:    auth.NewAdminAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminTokenSecret),
		Images:   images,
		Gatherer: prometheus.DefaultGatherer,
	})

	server := &http.Server{
		Handler:           middleware.CORS(middleware.Instrument(m, mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
