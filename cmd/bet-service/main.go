package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"

	"go.uber.org/zap"

	bhttp "github.com/radieske/jackpot-bet-service/internal/bet-service/http"
	"github.com/radieske/jackpot-bet-service/internal/bet-service/jackpot"
	"github.com/radieske/jackpot-bet-service/internal/bet-service/repo"
	"github.com/radieske/jackpot-bet-service/internal/shared/config"
	"github.com/radieske/jackpot-bet-service/internal/shared/db"
	"github.com/radieske/jackpot-bet-service/internal/shared/logger"
	"github.com/radieske/jackpot-bet-service/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// deps: estratégias das fórmulas -> engine -> repositório transacional
	strategies := jackpot.NewStrategies(jackpot.Params{
		FixedRate:     cfg.ContribFixedRate,
		InitialRate:   cfg.ContribInitialRate,
		DecayRate:     cfg.ContribDecayRate,
		FixedChance:   cfg.RewardFixedChance,
		InitialChance: cfg.RewardInitialChance,
		GrowthRate:    cfg.RewardGrowthRate,
	}, rand.Float64)
	engine := jackpot.NewEngine(strategies)
	repository := repo.NewPostgres(pg, engine)

	// HTTP público
	api := bhttp.NewServer(log, repository)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
