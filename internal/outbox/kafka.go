package outbox

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/radieske/jackpot-bet-service/internal/shared/kafka"
)

// KafkaBroker adapta um writer Kafka ao contrato Broker do publisher
type KafkaBroker struct {
	writer *kafkago.Writer
}

func NewKafkaBroker(w *kafkago.Writer) *KafkaBroker {
	return &KafkaBroker{writer: w}
}

func (b *KafkaBroker) Send(ctx context.Context, key string, value []byte) error {
	return kafka.WriteJSON(ctx, b.writer, key, value)
}
