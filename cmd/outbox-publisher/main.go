package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/jackpot-bet-service/internal/outbox"
	"github.com/radieske/jackpot-bet-service/internal/shared/config"
	"github.com/radieske/jackpot-bet-service/internal/shared/db"
	"github.com/radieske/jackpot-bet-service/internal/shared/kafka"
	"github.com/radieske/jackpot-bet-service/internal/shared/logger"
	"github.com/radieske/jackpot-bet-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres: tabela outbox_events compartilhada com o bet-service
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Kafka writer (topic jackpot_bets)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicJackpotBets)
	defer writer.Close()

	store := outbox.NewPostgresStore(pg)
	broker := outbox.NewKafkaBroker(writer)
	publisher := outbox.NewPublisher(log, store, broker, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	// shutdown por sinal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	log.Info("outbox-publisher started",
		zap.Duration("interval", cfg.OutboxPollInterval),
		zap.Int("batchSize", cfg.OutboxBatchSize),
		zap.String("topic", cfg.TopicJackpotBets),
	)
	publisher.Run(ctx)
}
