package main

import (
	"context"
	"net/http"

	"github.com/roomlink/connect/internal/ai"
	"github.com/roomlink/connect/internal/ai/gemini"
	"github.com/roomlink/connect/internal/app"
	"github.com/roomlink/connect/internal/cache"
	"github.com/roomlink/connect/internal/config"
	"github.com/roomlink/connect/internal/db"
	"github.com/roomlink/connect/internal/logger"
	"github.com/roomlink/connect/internal/metrics"
	"github.com/roomlink/connect/internal/scoring"
	"github.com/roomlink/connect/internal/service/matchmaking"
	"github.com/roomlink/connect/internal/service/queue"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Optional Gemini-backed explanation service. The pipeline runs
	// fine without it; every explanation has a deterministic fallback.
	var explainer ai.Explainer
	if cfg.Gemini.APIKey != "" {
		generator, err := gemini.NewGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn("gemini unavailable, explanations will use fallbacks", "err", err)
		} else {
			explainer = gemini.NewExplainer(generator, cfg.Gemini.Timeout)
			log.Info("gemini explainer enabled", "model", generator.Model())
		}
	}

	appCtx := app.New(cfg, database, redisCache, log, explainer)

	engine := scoring.NewEngine(scoring.DefaultConfig())
	matchSvc := matchmaking.NewService(appCtx, engine)
	queueSvc := queue.NewService(appCtx, engine)

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
		runDemoSweep(appCtx, matchSvc, queueSvc)
	}

	log.Info("matching pipeline ready", "metrics_addr", cfg.Metrics.Addr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
		log.Error("metrics server failed", "err", err)
	}
}

// runDemoSweep walks the seeded connect decisions, materializes the
// mutual matches, and logs one user's queue status. Development only.
func runDemoSweep(appCtx *app.AppContext, matchSvc *matchmaking.Service, queueSvc *queue.Service) {
	ctx := context.Background()

	var decisions []db.Decision
	if err := appCtx.DB.Where("action = ?", db.ActionConnect).Find(&decisions).Error; err != nil {
		appCtx.Logger.Error("demo sweep query failed", "err", err)
		return
	}

	created := 0
	for _, d := range decisions {
		outcome, err := matchSvc.CheckAndCreateMatch(ctx, d.RoomID, d.ActorID, d.TargetID)
		if err != nil {
			continue
		}
		if outcome.Created {
			created++
		}
	}
	appCtx.Logger.Info("demo sweep complete", "connects", len(decisions), "matches_created", created)

	if len(decisions) > 0 {
		uid := decisions[0].ActorID
		if status, err := queueSvc.Status(ctx, decisions[0].RoomID, uid); err == nil {
			appCtx.Logger.Info("demo queue status", "user", uid,
				"total", status.TotalQueued, "remaining", status.Remaining, "mutuals", status.MutualCount)
		}
	}
}
