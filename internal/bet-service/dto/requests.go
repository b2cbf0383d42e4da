package dto

import "github.com/shopspring/decimal"

type PlaceBetRequest struct {
	UserID    string          `json:"userId"`
	JackpotID string          `json:"jackpotId"`
	BetAmount decimal.Decimal `json:"betAmount"` // precisa ser > 0
}
