package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/jackpot-bet-service/internal/bet-events/consumer"
	"github.com/radieske/jackpot-bet-service/internal/shared/cache"
	"github.com/radieske/jackpot-bet-service/internal/shared/config"
	"github.com/radieske/jackpot-bet-service/internal/shared/kafka"
	"github.com/radieske/jackpot-bet-service/internal/shared/logger"
	"github.com/radieske/jackpot-bet-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis para deduplicação: o outbox entrega pelo menos-uma-vez
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka consumer: consome eventos BetPlaced publicados pelo outbox-publisher
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicJackpotBets, "bet-events")
	defer reader.Close()

	handler := consumer.NewHandler(log, consumer.NewRedisDeduper(rdb, cfg.DedupTTL))

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
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

	log.Info("bet-events-worker started", zap.String("consume", cfg.TopicJackpotBets))

	// Loop principal: consome eventos do Kafka e processa com deduplicação
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("bet-events-worker stopped")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := handler.Handle(ctx, value); err != nil {
			log.Error("process bet event", zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}
