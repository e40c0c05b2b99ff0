package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fractal-respect-game/internal/application"
	"fractal-respect-game/internal/config"
	"fractal-respect-game/internal/domain/ports/adapter"
	"fractal-respect-game/internal/domain/ports/repository"
	pg "fractal-respect-game/internal/infra/db/postgres"
	"fractal-respect-game/internal/infra/logging"
	"fractal-respect-game/internal/infra/memory"
	"fractal-respect-game/internal/infra/metrics"
	"fractal-respect-game/internal/infra/notify"
	red "fractal-respect-game/internal/infra/redis"
	"fractal-respect-game/internal/infra/sched"
	"fractal-respect-game/internal/infra/web"
	"fractal-respect-game/internal/infra/worker"
	"fractal-respect-game/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Live-session store ----
	var sessions repository.SessionRepository
	switch cfg.Store.Backend {
	case "redis":
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		sessions = red.NewSessionRepo(redisClient, red.NewLocker(redisClient))
		logger.Info().Msg("session store: redis")
	default:
		sessions = memory.NewSessionRepo()
		logger.Info().Msg("session store: memory")
	}

	// ---- Member directory ----
	directory := pg.NewMemberDirectory(pool)

	// ---- Notifications ----
	notifyPool := worker.NewPool(cfg.Notify.Workers, logger)
	notifyPool.Start(ctx)
	defer notifyPool.Stop()

	sinks := notify.Fanout{notify.NewLogNotifier(logger)}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger))
	}
	var notifier adapter.Notifier = notify.NewAsync(sinks, notifyPool, logger)

	// ---- Use cases ----
	histUC := usecase.NewHistoryUseCase(pg.NewHistoryRepo(pool), logger)
	ranking, override := usecase.NewGameUseCases(sessions, histUC, notifier, directory, directory, usecase.GameConfig{
		SubmissionBaseURL: cfg.Game.SubmissionBaseURL,
		RecordAborted:     cfg.Game.RecordAborted,
	}, logger)

	facade := application.NewGameFacade(ranking, override, histUC)

	// ---- HTTP server ----
	if cfg.Security.AdminSecret == "" {
		logger.Warn().Msg("security.admin_secret not set; admin endpoints are unusable")
	}
	auth := web.NewAuthManager(cfg.Security.AdminSecret, !cfg.Runtime.Dev, "", cfg.Security.AdminTTL)
	srv := web.NewServer(facade, auth, directory, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Activity worker ----
	activity := sched.NewActivityWorker(time.Minute, 30*time.Minute, sessions, logger)
	go func() { _ = activity.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := server.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
