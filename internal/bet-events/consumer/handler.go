package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/jackpot-bet-service/pkg/contracts/events"
)

// Deduper registra chaves já vistas; FirstSeen retorna false para repetições
// dentro da janela de retenção
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// RedisDeduper implementa deduplicação com SET NX + TTL
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	return d.rdb.SetNX(ctx, "jackpot_bets:seen:"+key, 1, d.ttl).Result()
}

// Handler processa eventos BetPlaced vindos do tópico jackpot_bets.
// O outbox entrega pelo menos-uma-vez, então toda mensagem passa primeiro
// pela deduplicação por betId+eventType.
type Handler struct {
	log   *zap.Logger
	dedup Deduper
}

func NewHandler(log *zap.Logger, dedup Deduper) *Handler {
	return &Handler{log: log, dedup: dedup}
}

func (h *Handler) Handle(ctx context.Context, value []byte) error {
	var ev events.BetPlaced
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("unmarshal bet_placed: %w", err)
	}

	first, err := h.dedup.FirstSeen(ctx, ev.BetID+":"+events.EventTypeBetPlaced)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !first {
		h.log.Debug("duplicate bet event skipped", zap.String("betId", ev.BetID))
		return nil
	}

	h.log.Info("bet event processed",
		zap.String("betId", ev.BetID),
		zap.String("userId", ev.UserID),
		zap.String("jackpotId", ev.JackpotID),
		zap.String("betAmount", ev.BetAmount.String()),
	)
	return nil
}
