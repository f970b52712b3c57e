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
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/orya-live/padel-engine/brackets"
	"github.com/orya-live/padel-engine/config"
	"github.com/orya-live/padel-engine/db"
	"github.com/orya-live/padel-engine/handlers"
	"github.com/orya-live/padel-engine/repositories"
	api "github.com/orya-live/padel-engine/routes"
	"github.com/orya-live/padel-engine/services"
	"github.com/orya-live/padel-engine/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Архиватор снапшотов (Cloudflare R2), опционален
	var archiver *storage.SnapshotArchiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewR2Uploader(context.Background(), storage.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewSnapshotArchiver(uploader)
		logger.Info("snapshot archiver initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("snapshot archiver disabled: no R2 configuration")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	pairingRepo := repositories.NewPostgresPairingRepository(dbConn)
	configRepo := repositories.NewPostgresConfigRepository(dbConn)
	snapshotRepo := repositories.NewPostgresSeedSnapshotRepository(dbConn)
	disputeRepo := repositories.NewPostgresDisputeRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditSink(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	// Генераторы и сервисный слой
	locker := services.NewScopeLocker()
	groupGen := &brackets.GroupStageGenerator{}
	knockoutGen := &brackets.KnockoutBracketGenerator{}

	authService := services.NewAuthService(cfg.PanelUsers, cfg.JWTSecretKey)
	matchService := services.NewMatchService(
		matchRepo, pairingRepo, configRepo, txManager, locker, auditRepo, wsHub, logger,
	)
	generationService := services.NewGenerationService(
		groupGen, knockoutGen,
		matchRepo, pairingRepo, configRepo, snapshotRepo, tournamentRepo,
		txManager, locker, auditRepo, wsHub, archiver, logger,
	)
	standingsService := services.NewStandingsService(matchRepo, configRepo)
	lifecycleService := services.NewLifecycleService(
		tournamentRepo, pairingRepo, txManager, locker, auditRepo, wsHub, logger,
	)
	disputeService := services.NewDisputeService(
		disputeRepo, matchRepo, txManager, locker, auditRepo, wsHub, logger,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	generationHandler := handlers.NewGenerationHandler(generationService)
	matchHandler := handlers.NewMatchHandler(matchService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleService)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		authHandler,
		generationHandler,
		matchHandler,
		standingsHandler,
		lifecycleHandler,
		disputeHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
