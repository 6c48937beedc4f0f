package scoring

import (
	"sort"

	"github.com/roomlink/connect/internal/db"
)

// DefaultMaxMatches is the ranked-list limit when no override is set.
const DefaultMaxMatches = 3

// ExtraMatchesBonus is added to the limit when the viewer holds an
// extra_matches boost.
const ExtraMatchesBonus = 2

// ScoredCandidate is one ranked entry: the candidate's profile plus the
// scoring outcome and boost state that ordered it.
type ScoredCandidate struct {
	UserID       uint64
	Profile      db.Profile
	Score        float64
	SharedTopics []string
	Explanation  string
	Boosted      bool // candidate holds priority_visibility
}

// RankOptions controls list length.
type RankOptions struct {
	// MaxMatches bounds the result; DefaultMaxMatches when zero.
	MaxMatches int
	// IncludeBoosts raises the bound by ExtraMatchesBonus. Set when the
	// viewer has an active extra_matches boost.
	IncludeBoosts bool
}

// Rank scores every candidate against me and returns an ordered,
// length-bounded list.
//
// Ordering: candidates holding priority_visibility first, then score
// descending. The sort is stable, so equal-score equal-boost candidates
// keep their input order. Note the double reward: priority_visibility
// both inflates the score (inside Score) and floats the candidate above
// higher-raw-score unboosted ones.
//
// me is excluded from the pool by id. boostsByUser supplies each
// candidate's active boosts; missing entries mean no boosts.
//
// Pure function of its inputs; no I/O.
func (e *Engine) Rank(me *db.Profile, candidates []db.Profile, boostsByUser map[uint64][]string, opts RankOptions) []ScoredCandidate {
	if me == nil {
		return nil
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if c.UserID == me.UserID {
			continue
		}
		boosts := boostsByUser[c.UserID]
		res := e.Score(me, &c, boosts)
		scored = append(scored, ScoredCandidate{
			UserID:       c.UserID,
			Profile:      c,
			Score:        res.Score,
			SharedTopics: res.SharedTopics,
			Explanation:  res.Explanation,
			Boosted:      containsBoost(boosts, db.BoostPriorityVisibility),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Boosted != scored[j].Boosted {
			return scored[i].Boosted
		}
		return scored[i].Score > scored[j].Score
	})

	limit := opts.MaxMatches
	if limit <= 0 {
		limit = DefaultMaxMatches
	}
	if opts.IncludeBoosts {
		limit += ExtraMatchesBonus
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
