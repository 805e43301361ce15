// Package main is the entry point for the saldo background worker.
// It relays the transactional outbox to Kafka and runs periodic cleanup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"saldo/internal/infrastructure/events"
	"saldo/internal/infrastructure/storage/postgres"
	"saldo/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting saldo worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	publisher := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		Topic:   getEnv("KAFKA_TOPIC", "saldo.ledger.events"),
	})
	defer publisher.Close()

	relay := postgres.NewOutboxRelay(pool.Unwrap(), 100, publisher)

	worker := NewWorker(pool, relay, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker relays outbox messages and cleans up expired auxiliary data.
type Worker struct {
	pool  *postgres.Pool
	relay *postgres.OutboxRelay
	log   *logger.Logger
}

func NewWorker(pool *postgres.Pool, relay *postgres.OutboxRelay, log *logger.Logger) *Worker {
	return &Worker{
		pool:  pool,
		relay: relay,
		log:   log.WithComponent("worker"),
	}
}

// Run polls the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupSessions(ctx)
			w.cleanupIdempotency(ctx)
			w.moveFailedToDLQ(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		return
	}

	if processed > 0 {
		w.log.Debugw("processed outbox batch", "count", processed)
	}
}

func (w *Worker) cleanupSessions(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "count", result.RowsAffected())
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
}

func (w *Worker) moveFailedToDLQ(ctx context.Context) {
	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("move to DLQ failed", "error", err)
		return
	}

	if moved > 0 {
		w.log.Warnw("moved failed outbox messages to DLQ", "count", moved)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
