package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/complaint-voice-backend/internal/agent"
	"github.com/ignatzorin/complaint-voice-backend/internal/bridge"
	"github.com/ignatzorin/complaint-voice-backend/internal/config"
	"github.com/ignatzorin/complaint-voice-backend/internal/db"
	httpHandlers "github.com/ignatzorin/complaint-voice-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/complaint-voice-backend/internal/http/router"
	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
	"github.com/ignatzorin/complaint-voice-backend/internal/repository"
	"github.com/ignatzorin/complaint-voice-backend/internal/service"
	"github.com/ignatzorin/complaint-voice-backend/pkg/metrics"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	m := metrics.NewMetrics("complaint_desk")

	// Репозитории.
	complaintRepo := repository.NewComplaintRepository(dbConn)
	operatorRepo := repository.NewOperatorRepository(dbConn)

	// Сервисы.
	complaintService := service.NewComplaintService(complaintRepo, m)
	authService := service.NewAuthService(operatorRepo, tokenManager)

	// Мосты звонков.
	registry := bridge.NewRegistry()
	dispatcher := agent.NewDispatcher(complaintService, cfg.StoreTimeout, m)

	// HTTP хэндлеры.
	voiceHandler := httpHandlers.NewVoiceHandler(cfg.PublicHost)
	streamHandler := httpHandlers.NewStreamHandler(cfg, dispatcher, registry, m)
	authHandler := httpHandlers.NewAuthHandler(authService)
	complaintHandler := httpHandlers.NewComplaintHandler(complaintService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, registry)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, voiceHandler, streamHandler, authHandler, complaintHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()

		// Сначала обрываем активные звонки, иначе Shutdown будет ждать
		// их websocket соединения до таймаута.
		registry.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
