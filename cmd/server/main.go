// Package main - точка входа сервера BrainQuest Progress Hub.
//
// Сервис принимает события активности мини-игр, фолдит их в недельный
// прогресс (XP, уровни, стрики, бейджи) и ведёт общий лидерборд с
// best-effort рассылкой изменений подключённым зрителям.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/EventHandlers)
// - Infrastructure: хранилища, кеш рейтинга, шина событий
// - Interface: HTTP API и websocket-поток лидерборда
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application layer
	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/command"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/eventhandler"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/application/query"

	// Domain layer
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/messaging"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/memory"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/redis"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/resilience"
	persistencerouter "github.com/brainquest-hub/brainquest-progress-hub/internal/infrastructure/persistence/router"

	// Interface layer
	"github.com/brainquest-hub/brainquest-progress-hub/internal/interface/rest"

	goredis "github.com/redis/go-redis/v9"

	// Packages
	"github.com/brainquest-hub/brainquest-progress-hub/config"
	"github.com/brainquest-hub/brainquest-progress-hub/pkg/logger"
	"github.com/brainquest-hub/brainquest-progress-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Config{
		Level:  cfg.Observability.LogLevel,
		Format: logger.Format(cfg.Observability.LogFormat),
	})
	log.Info("starting BrainQuest Progress Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")

	pgCfg := postgres.DefaultConfig(cfg.Database.URL)
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MinConns = int32(cfg.Database.MinConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	var dbConn *postgres.Connection
	err = retry.Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.Connect(ctx, pgCfg)
		return connErr
	}, retry.WithMaxAttempts(5), retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		log.Warn("database connection attempt failed", "attempt", attempt, "retry_in", delay, "error", err)
	}))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	if err := dbConn.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisClient  *goredis.Client
		rankingCache leaderboard.RankingCache
	)

	if !cfg.Redis.Disabled && cfg.Redis.URL != "" {
		log.Info("connecting to Redis...")

		redisCfg := redisinfra.DefaultConfig(cfg.Redis.URL)
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		client, redisErr := redisinfra.Connect(ctx, redisCfg)
		if redisErr != nil {
			log.Warn("failed to connect to Redis, falling back to in-process cache", "error", redisErr)
		} else {
			redisClient = client
			defer func() {
				log.Info("closing Redis connection...")
				_ = client.Close()
			}()
			rankingCache = redisinfra.NewRankingCache(client)
			log.Info("Redis connection established")
		}
	}
	if rankingCache == nil {
		rankingCache = memory.NewRankingCache()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ ХРАНИЛИЩ И РОУТЕРА ТИРОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing stores...")

	sessionIdentities := memory.NewIdentityStore()
	sessionProgress := memory.NewProgressStore()

	// Долговечные хранилища за общим circuit breaker: при отказе базы
	// вызовы быстро возвращают транзиентную ошибку, и запись активности
	// уходит в деградированный режим вместо таймаута на каждый запрос.
	durableIdentities, durableProgress := resilience.NewStores(
		postgres.NewIdentityRepository(dbConn),
		postgres.NewProgressRepository(dbConn),
		log,
	)

	identityRouter := persistencerouter.NewIdentityRouter(sessionIdentities, durableIdentities)
	progressRouter := persistencerouter.NewProgressRouter(sessionProgress, durableProgress)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS И BROADCAST-КАНАЛА
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")

	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	hub := messaging.NewBroadcastHub(messaging.BroadcastHubConfig{
		ViewerBuffer: cfg.Leaderboard.BroadcastBuffer,
		Logger:       log,
	})

	// Между инстансами publish-и реплицируются через Redis Pub/Sub.
	var broadcaster leaderboard.Broadcaster = hub
	if redisClient != nil {
		relay, relayErr := messaging.NewRedisRelay(messaging.RedisRelayConfig{
			Client: redisClient,
			Local:  hub,
			Logger: log,
		})
		if relayErr != nil {
			log.Warn("failed to start broadcast relay, local fan-out only", "error", relayErr)
		} else {
			broadcaster = relay
			defer relay.Close()
		}
	}
	if broadcaster == hub {
		defer hub.Close()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	recordActivity := command.NewRecordActivityHandler(identityRouter, progressRouter, eventBus, log)
	leaderboardQuery := query.NewGetLeaderboardHandler(rankingCache, durableIdentities, sessionIdentities, log)
	weeklyQuery := query.NewGetWeeklyProgressHandler(progressRouter, log)
	identityQuery := query.NewGetIdentityHandler(identityRouter)

	// Фиче-флаги: раскатка по владельцам через стабильный хеш.
	recordActivity.SetBadgeGate(func(ownerID string) bool {
		return cfg.Features.IsEnabledFor(config.FeatureBadgeEvaluation, ownerID)
	})
	weeklyQuery.SetWritebackGate(func(ownerID string) bool {
		return cfg.Features.IsEnabledFor(config.FeatureProgressWriteback, ownerID)
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 9. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	entryChanged := eventhandler.NewOnEntryChangedHandler(rankingCache, broadcaster, log)
	if err := eventBus.Subscribe(shared.EventEntryChanged, entryChanged.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ПРОГРЕВ КЕША РЕЙТИНГА
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Leaderboard.WarmOnStartup {
		if err := leaderboardQuery.Rebuild(ctx); err != nil {
			log.Warn("ranking cache warm-up failed, will rebuild on demand", "error", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	activityHandler := rest.NewActivityHandler(recordActivity, weeklyQuery, identityQuery, log)
	boardHandler := rest.NewLeaderboardHandler(leaderboardQuery, cfg.Leaderboard.MaxLimit, log)
	streamHandler := rest.NewStreamHandler(broadcaster, log)
	streamHandler.SetAccessGate(func(viewerKey string) bool {
		return cfg.Features.IsEnabledFor(config.FeatureLeaderboardStream, viewerKey)
	})

	healthChecks := map[string]rest.HealthChecker{
		"database": dbConn.Ping,
	}

	server := rest.NewServer(
		cfg.HTTP,
		cfg.Observability.MetricsEnabled,
		activityHandler,
		boardHandler,
		streamHandler,
		healthChecks,
		log,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("shutting down http server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}
