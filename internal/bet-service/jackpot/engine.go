package jackpot

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Pool é o estado persistido de um jackpot
type Pool struct {
	ID               string
	InitialValue     decimal.Decimal
	CurrentValue     decimal.Decimal
	MaxValue         decimal.Decimal
	ContributionType ContributionType
	RewardType       RewardType
}

// ContributionEntry é o registro imutável de uma contribuição ao pool
type ContributionEntry struct {
	ID                   string
	BetID                string
	UserID               string
	JackpotID            string
	StakeAmount          decimal.Decimal
	ContributionAmount   decimal.Decimal
	CurrentJackpotAmount decimal.Decimal // total do pool após a contribuição
	CreatedAt            time.Time
}

// RewardEntry é o registro imutável de uma premiação (pool inteiro no momento do prêmio)
type RewardEntry struct {
	ID           string
	BetID        string
	UserID       string
	JackpotID    string
	RewardAmount decimal.Decimal
	CreatedAt    time.Time
}

// BetRef identifica a aposta persistida que dispara contribuição/premiação
type BetRef struct {
	BetID     string
	UserID    string
	JackpotID string
	Amount    decimal.Decimal
}

// PoolStore é a visão transacional do estado do jackpot e dos ledgers.
// A implementação de produção opera sobre a mesma transação SQL da aposta;
// FindForUpdate deve segurar lock de linha até o commit para serializar o
// read-modify-write do pool entre apostas concorrentes.
type PoolStore interface {
	// FindForUpdate retorna (nil, nil) quando o jackpot não existe
	FindForUpdate(ctx context.Context, jackpotID string) (*Pool, error)
	SaveCurrentValue(ctx context.Context, jackpotID string, value decimal.Decimal) error
	AppendContribution(ctx context.Context, e *ContributionEntry) error
	AppendReward(ctx context.Context, e *RewardEntry) error
}

// Engine aplica as estratégias configuradas de cada jackpot sobre um PoolStore
type Engine struct {
	strategies *Strategies
}

func NewEngine(s *Strategies) *Engine {
	return &Engine{strategies: s}
}

// Draw amostra o sorteio uniforme usado por EvaluateReward. Deve ser chamado
// uma única vez por colocação, fora da transação, para que um retry não
// re-sorteie a premiação.
func (e *Engine) Draw() float64 {
	return e.strategies.Draw()
}

// Contribute calcula e aplica a contribuição da aposta ao pool referenciado.
// Jackpot inexistente não é erro: a aposta pode legitimamente não participar
// de nenhum jackpot ativo, e o retorno é (nil, nil).
func (e *Engine) Contribute(ctx context.Context, store PoolStore, bet BetRef) (*ContributionEntry, error) {
	pool, err := store.FindForUpdate(ctx, bet.JackpotID)
	if err != nil {
		return nil, fmt.Errorf("find jackpot %s: %w", bet.JackpotID, err)
	}
	if pool == nil {
		return nil, nil
	}

	calc := e.strategies.Contribution(pool.ContributionType)
	amount := calc(bet.Amount, pool.CurrentValue, pool.InitialValue)
	newValue := pool.CurrentValue.Add(amount)

	if err := store.SaveCurrentValue(ctx, pool.ID, newValue); err != nil {
		return nil, fmt.Errorf("update jackpot %s: %w", pool.ID, err)
	}

	entry := &ContributionEntry{
		BetID:                bet.BetID,
		UserID:               bet.UserID,
		JackpotID:            pool.ID,
		StakeAmount:          bet.Amount,
		ContributionAmount:   amount,
		CurrentJackpotAmount: newValue,
	}
	if err := store.AppendContribution(ctx, entry); err != nil {
		return nil, fmt.Errorf("append contribution: %w", err)
	}
	return entry, nil
}

// EvaluateReward avalia a premiação da aposta contra o roll já amostrado.
// Se elegível, registra o prêmio com o valor integral do pool e zera o pool
// de volta ao valor inicial — as duas mutações na mesma unidade atômica do
// chamador. Jackpot inexistente ou aposta não elegível retornam (nil, nil).
func (e *Engine) EvaluateReward(ctx context.Context, store PoolStore, bet BetRef, roll float64) (*RewardEntry, error) {
	pool, err := store.FindForUpdate(ctx, bet.JackpotID)
	if err != nil {
		return nil, fmt.Errorf("find jackpot %s: %w", bet.JackpotID, err)
	}
	if pool == nil {
		return nil, nil
	}

	eligible := e.strategies.Reward(pool.RewardType)
	if !eligible(pool.CurrentValue, pool.InitialValue, pool.MaxValue, roll) {
		return nil, nil
	}

	entry := &RewardEntry{
		BetID:        bet.BetID,
		UserID:       bet.UserID,
		JackpotID:    pool.ID,
		RewardAmount: pool.CurrentValue,
	}
	if err := store.AppendReward(ctx, entry); err != nil {
		return nil, fmt.Errorf("append reward: %w", err)
	}

	// prêmio pago → pool volta ao valor inicial
	if err := store.SaveCurrentValue(ctx, pool.ID, pool.InitialValue); err != nil {
		return nil, fmt.Errorf("reset jackpot %s: %w", pool.ID, err)
	}
	return entry, nil
}
