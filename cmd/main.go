package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store", cfg.StoreDriver))

	deps := services.Dependencies{
		Generator: brackets.NewSwissGenerator(),
		Locker:    services.NewTournamentLocker(),
		Logger:    logger,
	}

	// Хранилище: postgres или память процесса
	var dbConn *sql.DB
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repositories.NewMemoryStore()
		deps.Transactor = store
		deps.Tournaments = store.Tournaments()
		deps.Participants = store.Participants()
		deps.Matches = store.Matches()
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		dbConn, err = db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}

		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.EnsureSchema(schemaCtx, dbConn)
		cancel()
		if err != nil {
			logger.Error("failed to prepare database schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database connection established")

		deps.Transactor = repositories.NewSQLTransactor(dbConn)
		deps.Tournaments = repositories.NewPostgresTournamentRepository(dbConn)
		deps.Participants = repositories.NewPostgresParticipantRepository(dbConn)
		deps.Matches = repositories.NewPostgresMatchRepository(dbConn)
	}

	// Архив итоговых таблиц: R2, а без бакета в памяти процесса для memory-режима
	r2 := cfg.R2()
	uploader, err := storage.NewArchiveUploader(context.Background(), r2, cfg.StoreDriver == config.StoreDriverMemory)
	if err != nil {
		logger.Error("failed to initialize archive uploader", slog.Any("error", err))
		os.Exit(1)
	}
	switch {
	case uploader == nil:
		logger.Info("standings archive disabled")
	case r2.Enabled():
		deps.Archive = storage.NewStandingsArchive(uploader)
		logger.Info("Cloudflare R2 archive enabled", slog.String("bucket", r2.BucketName))
	default:
		deps.Archive = storage.NewStandingsArchive(uploader)
		logger.Warn("standings archive kept in memory, data is lost on restart")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()
	deps.Publisher = wsHub
	logger.Info("WebSocket Hub started")

	sweeper, err := services.NewLockSweeper(deps.Locker, cfg.LockSweepInterval, logger)
	if err != nil {
		logger.Error("failed to create lock sweeper", slog.Any("error", err))
		os.Exit(1)
	}
	sweeper.Start()
	logger.Info("lock sweeper started", slog.Duration("interval", cfg.LockSweepInterval))

	tournamentService := services.NewTournamentService(deps)
	participantService := services.NewParticipantService(deps)
	matchService := services.NewMatchService(deps)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: []byte(cfg.JWTSecretKey), AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewParticipantHandler(participantService),
		handlers.NewMatchHandler(matchService),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if err := sweeper.Shutdown(); err != nil {
		logger.Error("failed to stop lock sweeper", slog.Any("error", err))
	}
	if dbConn != nil {
		closeDB(logger, dbConn)
	}
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func closeDB(logger *slog.Logger, dbConn *sql.DB) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
