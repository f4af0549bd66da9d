package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/messaging"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/outbox"
	"github.com/AchilleasB/kinder/nursery-service/internal/config"
	"github.com/AchilleasB/kinder/nursery-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadRelayConfig()
	if err != nil {
		bootLog := logger.New("prod")
		bootLog.Fatal().Err(err).Msg("load relay config")
	}
	log := logger.New(cfg.Env).With().Str("service", "relay").Logger()
	log.Info().Msg("starting outbox relay")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ExchangeName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to rabbitmq")
	}
	defer broker.Close()
	log.Info().Str("exchange", cfg.ExchangeName).Msg("connected to rabbitmq")

	worker := outbox.NewRelay(db, cfg.DatabaseURL, broker, log)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, worker.IsHealthy())
	})
	healthMux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, worker.IsReady())
	})
	healthServer := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HealthAddr).Msg("starting health server")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown")
	}
	log.Info().Msg("shutdown complete")
}

func writeStatus(w http.ResponseWriter, up bool) {
	status, code := "UP", http.StatusOK
	if !up {
		status, code = "DOWN", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"component": "outbox-relay",
	})
}
