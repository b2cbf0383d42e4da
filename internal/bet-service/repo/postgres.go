package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/radieske/jackpot-bet-service/internal/bet-service/jackpot"
	"github.com/radieske/jackpot-bet-service/internal/outbox"
	"github.com/radieske/jackpot-bet-service/pkg/contracts/events"
)

var ErrNotFound = errors.New("not found")

// maxTxRetries limita as repetições transparentes quando a transação perde a
// disputa pela linha do jackpot (serialization failure / deadlock)
const maxTxRetries = 3

// Postgres implementa a colocação de apostas e as consultas de ledger.
// Todo placeBet roda em uma única transação: aposta, evento no outbox,
// contribuição e premiação ficam visíveis juntos ou não ficam.
type Postgres struct {
	db     *sql.DB
	engine *jackpot.Engine
}

func NewPostgres(db *sql.DB, engine *jackpot.Engine) *Postgres {
	return &Postgres{db: db, engine: engine}
}

// PlaceBet grava a aposta, enfileira o evento BetPlaced e aplica
// contribuição/premiação na mesma unidade atômica. payloadFor serializa o
// evento a partir da aposta gravada; erro de serialização aborta a unidade
// inteira, pois um evento não registrado quebraria a garantia de entrega.
func (p *Postgres) PlaceBet(ctx context.Context, userID, jackpotID string, amount decimal.Decimal, payloadFor func(Bet) ([]byte, error)) (*PlacementResult, error) {
	// um sorteio por colocação: o retry da transação reavalia contra o
	// estado relido do pool, mas nunca re-sorteia
	roll := p.engine.Draw()

	var res *PlacementResult
	var err error
	for attempt := 0; ; attempt++ {
		res, err = p.placeBetOnce(ctx, userID, jackpotID, amount, roll, payloadFor)
		if err == nil || attempt >= maxTxRetries || !retriableTxError(err) {
			return res, err
		}
	}
}

func (p *Postgres) placeBetOnce(ctx context.Context, userID, jackpotID string, amount decimal.Decimal, roll float64, payloadFor func(Bet) ([]byte, error)) (*PlacementResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bet := Bet{
		ID:        uuid.NewString(),
		UserID:    userID,
		JackpotID: jackpotID,
		BetAmount: amount,
		CreatedAt: time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, jackpot_id, bet_amount, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		bet.ID, bet.UserID, bet.JackpotID, bet.BetAmount, bet.CreatedAt,
	); err != nil {
		return nil, err
	}

	payload, err := payloadFor(bet)
	if err != nil {
		return nil, err
	}
	if err = outbox.Enqueue(ctx, tx, &outbox.Event{
		AggregateType: events.AggregateTypeBet,
		AggregateID:   bet.ID,
		EventType:     events.EventTypeBetPlaced,
		Payload:       payload,
	}); err != nil {
		return nil, err
	}

	store := &txPoolStore{tx: tx}
	ref := jackpot.BetRef{BetID: bet.ID, UserID: bet.UserID, JackpotID: bet.JackpotID, Amount: bet.BetAmount}

	contribution, err := p.engine.Contribute(ctx, store, ref)
	if err != nil {
		return nil, err
	}
	reward, err := p.engine.EvaluateReward(ctx, store, ref, roll)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &PlacementResult{Bet: bet, Contribution: contribution, Reward: reward}, nil
}

// GetReward retorna uma entrada do ledger de premiações pelo id
func (p *Postgres) GetReward(ctx context.Context, id string) (*jackpot.RewardEntry, error) {
	var e jackpot.RewardEntry
	err := p.db.QueryRowContext(ctx, `
		SELECT id, bet_id, user_id, jackpot_id, reward_amount, created_at
		FROM jackpot_rewards WHERE id=$1`, id,
	).Scan(&e.ID, &e.BetID, &e.UserID, &e.JackpotID, &e.RewardAmount, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// retriableTxError identifica serialization_failure (40001) e deadlock_detected (40P01)
func retriableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// txPoolStore expõe o estado do jackpot e os ledgers dentro da transação do placeBet
type txPoolStore struct{ tx *sql.Tx }

// FindForUpdate trava a linha do jackpot até o commit, serializando o
// read-modify-write do pool entre apostas concorrentes
func (s *txPoolStore) FindForUpdate(ctx context.Context, jackpotID string) (*jackpot.Pool, error) {
	var pool jackpot.Pool
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, initial_value, current_value, max_value, contribution_type, reward_type
		FROM jackpots WHERE id=$1
		FOR UPDATE`, jackpotID,
	).Scan(&pool.ID, &pool.InitialValue, &pool.CurrentValue, &pool.MaxValue, &pool.ContributionType, &pool.RewardType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *txPoolStore) SaveCurrentValue(ctx context.Context, jackpotID string, value decimal.Decimal) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE jackpots SET current_value=$1, updated_at=NOW() WHERE id=$2`,
		value, jackpotID,
	)
	return err
}

func (s *txPoolStore) AppendContribution(ctx context.Context, e *jackpot.ContributionEntry) error {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO jackpot_contributions (id, bet_id, user_id, jackpot_id, stake_amount, contribution_amount, current_jackpot_amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.BetID, e.UserID, e.JackpotID, e.StakeAmount, e.ContributionAmount, e.CurrentJackpotAmount, e.CreatedAt,
	)
	return err
}

func (s *txPoolStore) AppendReward(ctx context.Context, e *jackpot.RewardEntry) error {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO jackpot_rewards (id, bet_id, user_id, jackpot_id, reward_amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.BetID, e.UserID, e.JackpotID, e.RewardAmount, e.CreatedAt,
	)
	return err
}
