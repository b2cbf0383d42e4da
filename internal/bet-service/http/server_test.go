package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/jackpot-bet-service/internal/bet-service/jackpot"
	"github.com/radieske/jackpot-bet-service/internal/bet-service/repo"
)

type fakeRepo struct {
	lastPayload []byte
	placeErr    error
	reward      *jackpot.RewardEntry
	rewardErr   error
}

func (f *fakeRepo) PlaceBet(_ context.Context, userID, jackpotID string, amount decimal.Decimal, payloadFor func(repo.Bet) ([]byte, error)) (*repo.PlacementResult, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	bet := repo.Bet{
		ID:        "bet-123",
		UserID:    userID,
		JackpotID: jackpotID,
		BetAmount: amount,
		CreatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	payload, err := payloadFor(bet)
	if err != nil {
		return nil, err
	}
	f.lastPayload = payload
	return &repo.PlacementResult{Bet: bet}, nil
}

func (f *fakeRepo) GetReward(_ context.Context, id string) (*jackpot.RewardEntry, error) {
	if f.rewardErr != nil {
		return nil, f.rewardErr
	}
	return f.reward, nil
}

func newTestServer(f *fakeRepo) http.Handler {
	return NewServer(zap.NewNop(), f).Router()
}

func TestPlaceBetCreated(t *testing.T) {
	f := &fakeRepo{}
	srv := newTestServer(f)

	body := `{"userId":"user-1","jackpotId":"jp-1","betAmount":50.5}`
	req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bet-123", resp["betId"])
	assert.Equal(t, "user-1", resp["userId"])
	assert.Equal(t, "Bet placed successfully", resp["message"])

	// payload do outbox carrega o valor como decimal exato, nunca float binário
	assert.Contains(t, string(f.lastPayload), `"betAmount":"50.5"`)
	assert.Contains(t, string(f.lastPayload), `"betId":"bet-123"`)
}

func TestPlaceBetValidation(t *testing.T) {
	srv := newTestServer(&fakeRepo{})

	cases := []struct {
		name string
		body string
	}{
		{"missing userId", `{"jackpotId":"jp-1","betAmount":10}`},
		{"missing jackpotId", `{"userId":"user-1","betAmount":10}`},
		{"zero amount", `{"userId":"user-1","jackpotId":"jp-1","betAmount":0}`},
		{"negative amount", `{"userId":"user-1","jackpotId":"jp-1","betAmount":-5}`},
		{"bad json", `{not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlaceBetMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/bets", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPlaceBetRepoFailure(t *testing.T) {
	srv := newTestServer(&fakeRepo{placeErr: errors.New("tx aborted")})

	body := `{"userId":"user-1","jackpotId":"jp-1","betAmount":10}`
	req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetRewardFound(t *testing.T) {
	f := &fakeRepo{reward: &jackpot.RewardEntry{
		ID:           "rw-1",
		BetID:        "bet-123",
		UserID:       "user-1",
		JackpotID:    "jp-1",
		RewardAmount: decimal.RequireFromString("105.00"),
		CreatedAt:    time.Now(),
	}}
	srv := newTestServer(f)

	req := httptest.NewRequest(http.MethodGet, "/jackpots/rewards/rw-1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rw-1", resp["id"])
	assert.Equal(t, "105", resp["rewardAmount"])
}

func TestGetRewardNotFound(t *testing.T) {
	srv := newTestServer(&fakeRepo{rewardErr: repo.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/jackpots/rewards/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/bets/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Betting service is up and running", rec.Body.String())
}
