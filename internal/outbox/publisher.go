package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Store fornece a reivindicação de eventos entregáveis ao publisher
type Store interface {
	ClaimDeliverable(ctx context.Context, limit int) (Claim, error)
}

// Claim é um lote reivindicado: cada evento recebe exatamente um desfecho
// (published/failed) antes do Close devolver as linhas ao próximo tick
type Claim interface {
	Events() []Event
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	Close() error
}

// Broker é o transporte de saída. A entrega é pelo menos-uma-vez: um crash
// entre o aceite do broker e o MarkPublished reentrega o evento no próximo
// tick, e consumidores precisam deduplicar.
type Broker interface {
	Send(ctx context.Context, key string, value []byte) error
}

// Publisher drena o outbox para o stream de mensagens em passadas periódicas
type Publisher struct {
	log      *zap.Logger
	store    Store
	broker   Broker
	interval time.Duration
	batch    int
}

func NewPublisher(log *zap.Logger, store Store, broker Broker, interval time.Duration, batch int) *Publisher {
	return &Publisher{log: log, store: store, broker: broker, interval: interval, batch: batch}
}

// Run executa uma passada por tick até o contexto ser cancelado
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox publisher stopped")
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.log.Error("outbox pass", zap.Error(err))
			}
		}
	}
}

// RunOnce processa um lote: tentativa de entrega por evento, desfecho gravado
// na hora. A falha de um evento não bloqueia nem desfaz a entrega dos demais.
func (p *Publisher) RunOnce(ctx context.Context) error {
	claim, err := p.store.ClaimDeliverable(ctx, p.batch)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := claim.Close(); cerr != nil {
			p.log.Error("close outbox claim", zap.Error(cerr))
		}
	}()

	events := claim.Events()
	if len(events) == 0 {
		return nil
	}
	p.log.Info("publishing outbox events", zap.Int("count", len(events)))

	for _, ev := range events {
		// chave = aggregateId preserva ordenação por agregado no transporte.
		// O envio é sequencial dentro do lote: enviar em paralelo quebraria a
		// ordem de eventos do mesmo agregado, e o timeout do writer limita
		// quanto um broker lento segura o restante do lote.
		if err := p.broker.Send(ctx, ev.AggregateID, ev.Payload); err != nil {
			p.log.Warn("outbox delivery failed",
				zap.Int64("eventId", ev.ID),
				zap.Int("retryCount", ev.RetryCount+1),
				zap.Error(err),
			)
			if merr := claim.MarkFailed(ctx, ev.ID, err.Error()); merr != nil {
				p.log.Error("mark failed", zap.Int64("eventId", ev.ID), zap.Error(merr))
				continue
			}
			if ev.RetryCount+1 >= MaxRetries {
				eventsAbandoned.Inc()
				p.log.Error("outbox event abandoned after max retries", zap.Int64("eventId", ev.ID))
			} else {
				eventsFailed.Inc()
			}
			continue
		}

		if err := claim.MarkPublished(ctx, ev.ID); err != nil {
			// broker já aceitou; sem o desfecho gravado o evento será
			// reentregue no próximo tick (pelo menos-uma-vez)
			p.log.Error("mark published", zap.Int64("eventId", ev.ID), zap.Error(err))
			continue
		}
		eventsPublished.Inc()
	}

	return nil
}
