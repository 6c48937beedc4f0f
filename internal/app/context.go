package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/roomlink/connect/internal/ai"
	"github.com/roomlink/connect/internal/cache"
	"github.com/roomlink/connect/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, optional
// explanation service).
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Explainer  ai.Explainer // nil when unconfigured
}

// New creates a new AppContext.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, explainer ai.Explainer) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Explainer:  explainer,
	}
}
