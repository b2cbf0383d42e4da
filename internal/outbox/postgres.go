package outbox

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implementa a fila durável do outbox sobre a tabela outbox_events
type PostgresStore struct{ db *sql.DB }

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// ClaimDeliverable abre uma transação e seleciona os eventos entregáveis mais
// antigos com FOR UPDATE SKIP LOCKED: uma vez reivindicado, o evento fica
// inelegível para novo pickup até o desfecho ser gravado e a claim fechada,
// evitando envios duplicados em voo para o mesmo evento.
func (s *PostgresStore) ClaimDeliverable(ctx context.Context, limit int) (Claim, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, status, retry_count, COALESCE(error_message,''), created_at
		FROM outbox_events
		WHERE status = $1 AND retry_count < $2
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		StatusPending, MaxRetries, limit,
	)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("list deliverable: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.Status, &e.RetryCount, &e.ErrorMessage, &e.CreatedAt); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return &pgClaim{tx: tx, events: events}, nil
}

// pgClaim mantém o lock das linhas reivindicadas até o Close
type pgClaim struct {
	tx     *sql.Tx
	events []Event
}

func (c *pgClaim) Events() []Event { return c.events }

// MarkPublished transiciona PENDING→PUBLISHED (terminal)
func (c *pgClaim) MarkPublished(ctx context.Context, id int64) error {
	_, err := c.tx.ExecContext(ctx, `
		UPDATE outbox_events SET status=$1, published_at=NOW(), error_message=NULL
		WHERE id=$2`,
		StatusPublished, id,
	)
	return err
}

// MarkFailed incrementa retry_count e registra o último erro; ao atingir o
// teto o status vira FAILED e o evento deixa de ser reentregue.
func (c *pgClaim) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := c.tx.ExecContext(ctx, `
		UPDATE outbox_events
		SET retry_count = retry_count + 1,
		    error_message = $1,
		    status = CASE WHEN retry_count + 1 >= $2 THEN $3 ELSE $4 END
		WHERE id = $5`,
		reason, MaxRetries, StatusFailed, StatusPending, id,
	)
	return err
}

// Close confirma os desfechos gravados e libera os locks das linhas
func (c *pgClaim) Close() error { return c.tx.Commit() }
