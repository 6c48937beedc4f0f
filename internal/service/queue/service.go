// Package queue serves the per-(room, user) candidate session: next
// undecided candidate, progress status, and reset.
//
// There is no persisted ranking state. The pool is re-ranked fresh on
// each call; it shrinks monotonically as decisions accumulate, so the
// top of the ranked remainder is always the next candidate.
package queue

import (
	"context"

	"github.com/roomlink/connect/internal/app"
	"github.com/roomlink/connect/internal/db"
	svcErr "github.com/roomlink/connect/internal/errors"
	"github.com/roomlink/connect/internal/metrics"
	"github.com/roomlink/connect/internal/repository"
	"github.com/roomlink/connect/internal/scoring"
)

// Status reports session progress for UI purposes.
type Status struct {
	// TotalQueued is the room member count minus the caller.
	TotalQueued int64
	// Remaining counts members without a live decision row.
	Remaining int64
	// MutualCount counts matches involving the caller in the room.
	MutualCount int64
}

// Service implements the session queue operations.
type Service struct {
	appCtx       *app.AppContext
	engine       *scoring.Engine
	decisionRepo *repository.DecisionRepository
	matchRepo    *repository.MatchRepository
	profileRepo  *repository.ProfileRepository
	boostRepo    *repository.BoostRepository
}

// NewService creates the queue service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, engine *scoring.Engine) *Service {
	return &Service{
		appCtx:       appCtx,
		engine:       engine,
		decisionRepo: repository.NewDecisionRepository(appCtx.DB),
		matchRepo:    repository.NewMatchRepository(appCtx.DB),
		profileRepo:  repository.NewProfileRepository(appCtx.DB),
		boostRepo:    repository.NewBoostRepository(appCtx.DB),
	}
}

// NextCandidate returns the top-ranked room member the user has not yet
// decided on, or nil when the queue is exhausted. A candidate never
// reappears while a live decision row exists for it.
func (s *Service) NextCandidate(ctx context.Context, roomID, userID uint64) (*scoring.ScoredCandidate, error) {
	s.appCtx.Logger.Debug("NextCandidate called", "room", roomID, "user", userID)

	if roomID == 0 || userID == 0 {
		return nil, svcErr.InvalidArgument("room_id and user_id are required")
	}

	me, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if me == nil {
		return nil, svcErr.NotFound("profile not found")
	}

	pool, err := s.undecidedPool(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		metrics.QueueExhaustedTotal.Inc()
		return nil, nil
	}

	boostsByUser := make(map[uint64][]string, len(pool))
	for _, c := range pool {
		boosts, err := s.boostRepo.ActiveBoosts(ctx, c.UserID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if len(boosts) > 0 {
			boostsByUser[c.UserID] = boosts
		}
	}

	myBoosts, err := s.boostRepo.ActiveBoosts(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ranked := s.engine.Rank(me, pool, boostsByUser, scoring.RankOptions{
		MaxMatches:    s.appCtx.Cfg.Matching.MaxMatches,
		IncludeBoosts: hasBoost(myBoosts, db.BoostExtraMatches),
	})
	if len(ranked) == 0 {
		metrics.QueueExhaustedTotal.Inc()
		return nil, nil
	}

	top := ranked[0]
	return &top, nil
}

// Status reports queue progress. The mutual count is served from the
// redis cache when warm, falling back to the store and repopulating the
// cache on miss.
func (s *Service) Status(ctx context.Context, roomID, userID uint64) (Status, error) {
	if roomID == 0 || userID == 0 {
		return Status{}, svcErr.InvalidArgument("room_id and user_id are required")
	}

	members, err := s.profileRepo.CountRoomMembers(ctx, roomID)
	if err != nil {
		return Status{}, svcErr.Map(err)
	}
	totalQueued := members - 1
	if totalQueued < 0 {
		totalQueued = 0
	}

	decided, err := s.decisionRepo.CountDecided(ctx, roomID, userID)
	if err != nil {
		return Status{}, svcErr.Map(err)
	}
	remaining := totalQueued - decided
	if remaining < 0 {
		remaining = 0
	}

	mutualCount, cached, err := s.appCtx.RedisCache.GetMutualCount(ctx, roomID, userID)
	if err != nil {
		s.appCtx.Logger.Warn("mutual count cache read failed", "err", err)
		cached = false
	}
	if !cached {
		mutualCount, err = s.matchRepo.CountForUser(ctx, roomID, userID)
		if err != nil {
			return Status{}, svcErr.Map(err)
		}
		if err := s.appCtx.RedisCache.SetMutualCount(ctx, roomID, userID, mutualCount); err != nil {
			s.appCtx.Logger.Warn("mutual count cache write failed", "err", err)
		}
	}

	return Status{
		TotalQueued: totalQueued,
		Remaining:   remaining,
		MutualCount: mutualCount,
	}, nil
}

// Reset deletes every decision the user made in the room, making all
// candidates eligible again. Matches are not deleted: a prior mutual
// connection stays intact even if the user checks again.
func (s *Service) Reset(ctx context.Context, roomID, userID uint64) error {
	s.appCtx.Logger.Info("queue reset", "room", roomID, "user", userID)

	if roomID == 0 || userID == 0 {
		return svcErr.InvalidArgument("room_id and user_id are required")
	}

	if err := s.decisionRepo.DeleteAll(ctx, roomID, userID); err != nil {
		return svcErr.Map(err)
	}

	// Matches survive a reset, but drop the cached count anyway so the
	// next Status re-reads the store.
	if err := s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMutualCount(roomID, userID)); err != nil {
		s.appCtx.Logger.Warn("mutual count cache invalidation failed", "err", err)
	}
	return nil
}

// undecidedPool returns room members excluding the caller and everyone
// the caller already decided on.
func (s *Service) undecidedPool(ctx context.Context, roomID, userID uint64) ([]db.Profile, error) {
	members, err := s.profileRepo.ListRoomMembers(ctx, roomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	decidedIDs, err := s.decisionRepo.DecidedTargetIDs(ctx, roomID, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	decided := make(map[uint64]struct{}, len(decidedIDs))
	for _, id := range decidedIDs {
		decided[id] = struct{}{}
	}

	pool := make([]db.Profile, 0, len(members))
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		if _, done := decided[m.UserID]; done {
			continue
		}
		pool = append(pool, m)
	}
	return pool, nil
}

func hasBoost(boosts []string, boost string) bool {
	for _, b := range boosts {
		if b == boost {
			return true
		}
	}
	return false
}
