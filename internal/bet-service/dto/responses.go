package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceBetResponse struct {
	BetID     string          `json:"betId"`
	UserID    string          `json:"userId"`
	JackpotID string          `json:"jackpotId"`
	BetAmount decimal.Decimal `json:"betAmount"`
	CreatedAt time.Time       `json:"createdAt"`
	Message   string          `json:"message,omitempty"`
}

type JackpotRewardResponse struct {
	ID           string          `json:"id"`
	BetID        string          `json:"betId"`
	UserID       string          `json:"userId"`
	JackpotID    string          `json:"jackpotId"`
	RewardAmount decimal.Decimal `json:"rewardAmount"`
	CreatedAt    time.Time       `json:"createdAt"`
}
