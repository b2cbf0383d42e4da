package outbox

import (
	"context"
	"database/sql"
	"time"
)

// Status do evento no outbox. PENDING é o único estado reofertado ao
// publisher; PUBLISHED e FAILED são terminais.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
	StatusFailed    Status = "FAILED"
)

// MaxRetries é o teto de tentativas de entrega; na falha que atinge o teto o
// evento vira FAILED e deixa de ser reofertado.
const MaxRetries = 3

// Event é a unidade durável de entrega pendente, gravada na mesma transação
// da mutação de negócio que a originou
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Status        Status
	RetryCount    int
	ErrorMessage  string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// Execer é o executor do chamador (tx ou conexão); Enqueue participa da
// transação de quem emite o evento
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Enqueue grava o evento como PENDING dentro da unidade atômica do chamador
func Enqueue(ctx context.Context, ex Execer, e *Event) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_type, aggregate_id, event_type, payload, status, retry_count, created_at)
		VALUES ($1,$2,$3,$4,$5,0,NOW())`,
		e.AggregateType, e.AggregateID, e.EventType, e.Payload, StatusPending,
	)
	return err
}
