package events

import "github.com/shopspring/decimal"

// Tipos usados nos registros do outbox para eventos de aposta
const (
	AggregateTypeBet   = "Bet"
	EventTypeBetPlaced = "BetPlaced"
)

// BetPlaced é o payload publicado no tópico jackpot_bets.
// O valor da aposta é serializado como decimal exato (string JSON),
// nunca como float binário.
type BetPlaced struct {
	BetID     string          `json:"betId"`
	UserID    string          `json:"userId"`
	JackpotID string          `json:"jackpotId"`
	BetAmount decimal.Decimal `json:"betAmount"`
}
