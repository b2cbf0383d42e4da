package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/jackpot-bet-service/internal/bet-service/jackpot"
)

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID        string
	UserID    string
	JackpotID string
	BetAmount decimal.Decimal
	CreatedAt time.Time
}

// PlacementResult é o desfecho de um placeBet: aposta gravada e, quando o
// jackpot existe, a entrada de contribuição e a eventual premiação
type PlacementResult struct {
	Bet          Bet
	Contribution *jackpot.ContributionEntry
	Reward       *jackpot.RewardEntry
}
