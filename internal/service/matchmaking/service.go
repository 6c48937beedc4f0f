// Package matchmaking implements decision recording, mutual-match
// detection, and the contact-reveal step of the matching pipeline.
//
// The service holds no authoritative in-process state: every Decision,
// Match, and ContactShare read/write goes through the shared store, so
// instances are stateless and horizontally scalable. Correctness under
// racing "connect" actions rests on the store's unique constraints plus
// upsert-on-conflict, never on in-process locking.
package matchmaking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomlink/connect/internal/ai"
	"github.com/roomlink/connect/internal/app"
	"github.com/roomlink/connect/internal/db"
	svcErr "github.com/roomlink/connect/internal/errors"
	"github.com/roomlink/connect/internal/metrics"
	"github.com/roomlink/connect/internal/repository"
	"github.com/roomlink/connect/internal/scoring"
)

// MatchOutcome is the result of a mutual-detection attempt.
type MatchOutcome struct {
	// Created is true only for the call that materialized the row.
	Created bool
	Match   *db.Match
}

// ShareOutcome is the result of a contact-share submission.
type ShareOutcome struct {
	IsMutual bool
	// MutualPayloads maps user id to contact payload, populated only
	// once both pair members have shared.
	MutualPayloads map[uint64]datatypes.JSONMap
}

// Service implements the decision/mutual/contact operations consumed by
// the HTTP layer.
type Service struct {
	appCtx       *app.AppContext
	engine       *scoring.Engine
	decisionRepo *repository.DecisionRepository
	matchRepo    *repository.MatchRepository
	contactRepo  *repository.ContactShareRepository
	profileRepo  *repository.ProfileRepository
}

// NewService creates the matchmaking service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, engine *scoring.Engine) *Service {
	return &Service{
		appCtx:       appCtx,
		engine:       engine,
		decisionRepo: repository.NewDecisionRepository(appCtx.DB),
		matchRepo:    repository.NewMatchRepository(appCtx.DB),
		contactRepo:  repository.NewContactShareRepository(appCtx.DB),
		profileRepo:  repository.NewProfileRepository(appCtx.DB),
	}
}

// RecordDecision persists a skip/connect decision.
//
// Behavior:
//   - Rejects self-targeting, zero ids, and unknown actions before any
//     store write.
//   - Upserts on (room, actor, target): a later decision overwrites the
//     earlier one, the triple never has more than one live row.
//   - Does not trigger mutual detection; callers of "connect" invoke
//     CheckAndCreateMatch separately so "skip" never pays for a
//     reciprocity probe.
func (s *Service) RecordDecision(ctx context.Context, roomID, userID, targetID uint64, action string) (db.Decision, error) {
	s.appCtx.Logger.Debug("RecordDecision called",
		"room", roomID, "user", userID, "target", targetID, "action", action)

	if roomID == 0 || userID == 0 || targetID == 0 {
		return db.Decision{}, svcErr.InvalidArgument("room_id, user_id and target_user_id are required")
	}
	if userID == targetID {
		return db.Decision{}, svcErr.InvalidArgument("cannot decide on yourself")
	}
	if action != db.ActionSkip && action != db.ActionConnect {
		return db.Decision{}, svcErr.InvalidArgument("action must be \"skip\" or \"connect\"")
	}

	decision, err := s.decisionRepo.Upsert(ctx, roomID, userID, targetID, action)
	if err != nil {
		s.appCtx.Logger.Error("decision upsert failed", "err", err)
		return db.Decision{}, svcErr.Map(err)
	}

	metrics.DecisionsTotal.WithLabelValues(action).Inc()
	return decision, nil
}

// CheckAndCreateMatch probes for the reciprocal "connect" and, when both
// directions exist, materializes exactly one Match for the unordered
// pair in the room.
//
// Racing calls from both members are expected: the pair is canonicalized
// and upserted against the (room, user_a, user_b) unique constraint with
// conflict-as-no-op, so exactly one row survives and every caller gets
// it back. The AI synergy explanation never blocks this path; the row
// is created with the deterministic fallback and backfilled best-effort.
func (s *Service) CheckAndCreateMatch(ctx context.Context, roomID, userID, targetID uint64) (MatchOutcome, error) {
	s.appCtx.Logger.Debug("CheckAndCreateMatch called",
		"room", roomID, "user", userID, "target", targetID)

	if roomID == 0 || userID == 0 || targetID == 0 {
		return MatchOutcome{}, svcErr.InvalidArgument("room_id, user_id and target_user_id are required")
	}
	if userID == targetID {
		return MatchOutcome{}, svcErr.InvalidArgument("cannot match with yourself")
	}

	// Reciprocal direction first: the common case is "not yet mutual"
	// and it costs one PK probe.
	reciprocal, err := s.decisionRepo.HasConnected(ctx, roomID, targetID, userID)
	if err != nil {
		return MatchOutcome{}, svcErr.Map(err)
	}
	if !reciprocal {
		return MatchOutcome{}, nil
	}

	// Guard the precondition before creating anything durable.
	own, err := s.decisionRepo.HasConnected(ctx, roomID, userID, targetID)
	if err != nil {
		return MatchOutcome{}, svcErr.Map(err)
	}
	if !own {
		return MatchOutcome{}, svcErr.InvalidArgument("no connect decision recorded for this pair")
	}

	userA, userB := db.CanonicalPair(userID, targetID)

	// Score/topics computed in canonical order so both racing callers
	// produce identical candidate rows.
	profileA, err := s.profileRepo.GetProfile(ctx, userA)
	if err != nil {
		return MatchOutcome{}, svcErr.Map(err)
	}
	profileB, err := s.profileRepo.GetProfile(ctx, userB)
	if err != nil {
		return MatchOutcome{}, svcErr.Map(err)
	}
	res := s.engine.Score(profileA, profileB, nil)

	created, match, err := s.matchRepo.UpsertPair(ctx, db.Match{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		UserA:        userA,
		UserB:        userB,
		Score:        res.Score,
		SharedTopics: res.SharedTopics,
		Explanation:  scoring.FallbackSynergy(res.SharedTopics),
	})
	if err != nil {
		s.appCtx.Logger.Error("match upsert failed", "err", err)
		return MatchOutcome{}, svcErr.Map(err)
	}

	if created {
		metrics.MatchesCreatedTotal.Inc()
		s.appCtx.RedisCache.BumpMutualCount(ctx, roomID, userA, userB)
		s.appCtx.Logger.Info("mutual match created",
			"room", roomID, "user_a", userA, "user_b", userB, "score", match.Score)
		s.backfillExplanation(ctx, match, profileA, profileB)
	}

	return MatchOutcome{Created: created, Match: &match}, nil
}

// backfillExplanation asks the AI service for a richer synergy blurb in
// the background. First creation only; failures leave the deterministic
// fallback in place and are only logged.
func (s *Service) backfillExplanation(ctx context.Context, match db.Match, profileA, profileB *db.Profile) {
	if s.appCtx.Explainer == nil {
		metrics.ExplanationsTotal.WithLabelValues("fallback").Inc()
		return
	}

	// Detached from the request: the caller must never wait on this,
	// and its cancellation must not abort the backfill.
	bg := context.WithoutCancel(ctx)
	go func() {
		var roomContext string
		if room, err := s.profileRepo.GetRoom(bg, match.RoomID); err == nil && room != nil {
			roomContext = room.Name
			if room.Topic != "" {
				roomContext += " — " + room.Topic
			}
		}

		text, err := s.appCtx.Explainer.ExplainSynergy(bg, ai.SynergyContext{
			Me:          profileA,
			Other:       profileB,
			Overlaps:    match.SharedTopics,
			RoomContext: roomContext,
		})
		if err != nil {
			metrics.ExplanationsTotal.WithLabelValues("fallback").Inc()
			s.appCtx.Logger.Debug("synergy explanation unavailable, keeping fallback",
				"match", match.ID, "err", err)
			return
		}

		if err := s.matchRepo.UpdateExplanation(bg, match.ID, text); err != nil {
			s.appCtx.Logger.Warn("explanation backfill write failed", "match", match.ID, "err", err)
			return
		}
		metrics.ExplanationsTotal.WithLabelValues("ai").Inc()
	}()
}

// RecordContactShare stores one member's contact payload for a match.
//
// Behavior:
//   - The user must be a member of the match pair.
//   - First write wins; re-sharing is a no-op.
//   - Once both members have shared, the response carries both payloads
//     (the contact-reveal step).
func (s *Service) RecordContactShare(ctx context.Context, matchID string, userID uint64, payload map[string]interface{}) (ShareOutcome, error) {
	s.appCtx.Logger.Debug("RecordContactShare called", "match", matchID, "user", userID)

	if matchID == "" || userID == 0 {
		return ShareOutcome{}, svcErr.InvalidArgument("match_id and user_id are required")
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return ShareOutcome{}, svcErr.Map(err)
	}
	if match == nil {
		return ShareOutcome{}, svcErr.NotFound("match not found")
	}
	if userID != match.UserA && userID != match.UserB {
		return ShareOutcome{}, svcErr.InvalidArgument("user is not a member of this match")
	}

	inserted, err := s.contactRepo.Insert(ctx, db.ContactShare{
		MatchID: matchID,
		UserID:  userID,
		Payload: payload,
	})
	if err != nil {
		return ShareOutcome{}, svcErr.Map(err)
	}

	shares, err := s.contactRepo.ListForMatch(ctx, matchID)
	if err != nil {
		return ShareOutcome{}, svcErr.Map(err)
	}

	outcome := ShareOutcome{IsMutual: len(shares) >= 2}
	if outcome.IsMutual {
		outcome.MutualPayloads = make(map[uint64]datatypes.JSONMap, len(shares))
		for _, share := range shares {
			outcome.MutualPayloads[share.UserID] = share.Payload
		}
	}

	switch {
	case !inserted:
		metrics.ContactSharesTotal.WithLabelValues("noop").Inc()
	case outcome.IsMutual:
		metrics.ContactSharesTotal.WithLabelValues("mutual").Inc()
	default:
		metrics.ContactSharesTotal.WithLabelValues("first").Inc()
	}

	return outcome, nil
}
