package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/jackpot-bet-service/internal/bet-service/dto"
	"github.com/radieske/jackpot-bet-service/internal/bet-service/jackpot"
	"github.com/radieske/jackpot-bet-service/internal/bet-service/repo"
	"github.com/radieske/jackpot-bet-service/pkg/contracts/events"
)

// Repo define as operações de persistência usadas pelo handler HTTP
type Repo interface {
	PlaceBet(ctx context.Context, userID, jackpotID string, amount decimal.Decimal, payloadFor func(repo.Bet) ([]byte, error)) (*repo.PlacementResult, error)
	GetReward(ctx context.Context, id string) (*jackpot.RewardEntry, error)
}

type Server struct {
	log  *zap.Logger
	repo Repo
}

func NewServer(log *zap.Logger, r Repo) *Server {
	return &Server{log: log, repo: r}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.placeBet)               // POST
	mux.HandleFunc("/bets/health", s.health)          // GET
	mux.HandleFunc("/jackpots/rewards/", s.getReward) // GET /jackpots/rewards/{id}
	return mux
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.JackpotID == "" || !req.BetAmount.IsPositive() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, err := s.repo.PlaceBet(r.Context(), req.UserID, req.JackpotID, req.BetAmount, func(b repo.Bet) ([]byte, error) {
		return json.Marshal(events.BetPlaced{
			BetID:     b.ID,
			UserID:    b.UserID,
			JackpotID: b.JackpotID,
			BetAmount: b.BetAmount,
		})
	})
	if err != nil {
		s.log.Error("place bet", zap.Error(err))
		http.Error(w, "bet placement failed", http.StatusInternalServerError)
		return
	}

	if res.Contribution != nil {
		s.log.Info("jackpot contribution applied",
			zap.String("betId", res.Bet.ID),
			zap.String("jackpotId", req.JackpotID),
			zap.String("contribution", res.Contribution.ContributionAmount.String()),
		)
	} else {
		s.log.Warn("no jackpot contribution made", zap.String("betId", res.Bet.ID), zap.String("jackpotId", req.JackpotID))
	}
	if res.Reward != nil {
		s.log.Info("jackpot reward awarded",
			zap.String("betId", res.Bet.ID),
			zap.String("userId", req.UserID),
			zap.String("amount", res.Reward.RewardAmount.String()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dto.PlaceBetResponse{
		BetID:     res.Bet.ID,
		UserID:    res.Bet.UserID,
		JackpotID: res.Bet.JackpotID,
		BetAmount: res.Bet.BetAmount,
		CreatedAt: res.Bet.CreatedAt,
		Message:   "Bet placed successfully",
	})
}

func (s *Server) getReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /jackpots/rewards/{id}
	id := r.URL.Path[len("/jackpots/rewards/"):]
	if id == "" {
		http.Error(w, "rewardId required", http.StatusBadRequest)
		return
	}

	reward, err := s.repo.GetReward(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get reward", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.JackpotRewardResponse{
		ID:           reward.ID,
		BetID:        reward.BetID,
		UserID:       reward.UserID,
		JackpotID:    reward.JackpotID,
		RewardAmount: reward.RewardAmount,
		CreatedAt:    reward.CreatedAt,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Betting service is up and running"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
