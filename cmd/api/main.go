package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/cache"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/feed"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/handler"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/middleware"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/repository"
	"github.com/AchilleasB/kinder/nursery-service/internal/config"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/services"
	"github.com/AchilleasB/kinder/nursery-service/internal/router"
	"github.com/AchilleasB/kinder/nursery-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("prod")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Env)

	privateKey, publicKey, err := cfg.LoadKeys()
	if err != nil {
		log.Fatal().Err(err).Msg("load signing keys")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db, config.NewCircuitBreaker("PostgreSQL", log))
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	log.Info().Str("addr", cfg.RedisAddress).Msg("connected to redis")
	store := cache.NewStore(redisClient, config.NewCircuitBreaker("Redis", log))

	noticeFeed := feed.NewNoticeFeed(repo, log)
	go func() {
		if err := noticeFeed.Listen(ctx, cfg.DatabaseURL); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("notice feed stopped")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	identity := services.NewIdentityService(cfg.AdminEmail, cfg.AdminPasswordHash, repo, repo)
	authService := services.NewAuthService(identity, privateKey, store)
	registrationService := services.NewRegistrationService(repo, identity, authService)
	attendanceService := services.NewAttendanceService(repo, repo)
	noticeService := services.NewNoticeService(repo, repo, noticeFeed)
	subscriptionService := services.NewSubscriptionService(store)
	adminService := services.NewAdminService(repo, repo, repo, repo, identity, store)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Options{
			Log:            log,
			Metrics:        m,
			Gatherer:       reg,
			Auth:           middleware.NewAuthMiddleware(publicKey, store, log),
			AllowedOrigins: cfg.CORSOrigins,
			RatePerMinute:  cfg.RateLimitPerMin,
			Health: handler.NewHealthHandler(cfg.Version, map[string]handler.Pinger{
				"database": handler.PingFunc(db.PingContext),
				"redis":    handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
			}),
			Session:      handler.NewAuthHandler(authService, m, log),
			Registration: handler.NewRegistrationHandler(registrationService, m, log),
			Educator:     handler.NewEducatorHandler(attendanceService, noticeService, m, log),
			Parent:       handler.NewParentHandler(noticeService, subscriptionService, m, log),
			Admin:        handler.NewAdminHandler(adminService, log),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
