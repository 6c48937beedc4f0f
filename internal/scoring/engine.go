// Package scoring computes compatibility scores between profiles and
// ranks candidate pools. Everything here is pure: no I/O, no store
// access, total over well-formed and missing inputs alike.
package scoring

import (
	"fmt"
	"strings"

	"github.com/roomlink/connect/internal/db"
)

// GoalPair is an unordered pair of career-goal tags.
type GoalPair struct {
	A string
	B string
}

// Config carries the scoring constants and the career-goal affinity
// tables. Kept as data rather than branching logic so tuning and
// property tests need no code changes.
type Config struct {
	SharedInterestPoints    float64
	MentorshipDirectPoints  float64 // seeking x offering, either direction
	MentorshipFlexPoints    float64 // either side "both", neither "none"
	HighAffinityPoints      float64
	MediumAffinityPoints    float64
	PriorityBoostMultiplier float64

	HighAffinityPairs   []GoalPair
	MediumAffinityPairs []GoalPair
}

// DefaultConfig returns the production scoring table.
func DefaultConfig() Config {
	return Config{
		SharedInterestPoints:    2,
		MentorshipDirectPoints:  3,
		MentorshipFlexPoints:    2,
		HighAffinityPoints:      4,
		MediumAffinityPoints:    2,
		PriorityBoostMultiplier: 1.10,
		HighAffinityPairs: []GoalPair{
			{"find-cofounder", "find-cofounder"},
			{"find-mentor", "mentor-others"},
			{"hire", "explore-jobs"},
			{"investors", "find-cofounder"},
		},
		MediumAffinityPairs: []GoalPair{
			{"learn-ai", "mentor-others"},
		},
	}
}

// Result is the outcome of scoring one ordered pair of profiles.
type Result struct {
	Score        float64
	SharedTopics []string
	Explanation  string
}

// Engine scores profile pairs against a Config.
type Engine struct {
	cfg      Config
	affinity map[GoalPair]float64
}

// NewEngine builds an engine, precomputing the affinity lookup.
func NewEngine(cfg Config) *Engine {
	aff := make(map[GoalPair]float64, len(cfg.HighAffinityPairs)+len(cfg.MediumAffinityPairs))
	for _, p := range cfg.HighAffinityPairs {
		aff[canonicalGoalPair(p.A, p.B)] = cfg.HighAffinityPoints
	}
	for _, p := range cfg.MediumAffinityPairs {
		aff[canonicalGoalPair(p.A, p.B)] = cfg.MediumAffinityPoints
	}
	return &Engine{cfg: cfg, affinity: aff}
}

// Score computes the compatibility of candidate for me.
//
// Terms, in explanation priority order:
//   - shared interests: SharedInterestPoints per interest present on
//     both sides (case-insensitive, deduplicated)
//   - mentorship fit: direct seeking/offering beats the flexible "both"
//   - career-goal affinity from the configured tables
//
// If activeBoosts contains priority_visibility the additive total is
// multiplied once by PriorityBoostMultiplier.
//
// Missing or nil inputs contribute zero; Score never fails.
func (e *Engine) Score(me, candidate *db.Profile, activeBoosts []string) Result {
	if me == nil || candidate == nil {
		return Result{Explanation: genericExplanation}
	}

	topics := sharedInterests(me.Interests, candidate.Interests)
	interestScore := float64(len(topics)) * e.cfg.SharedInterestPoints
	mentorshipScore := e.mentorshipScore(me.MentorshipPref, candidate.MentorshipPref)
	goalScore := e.goalScore(me.CareerGoals, candidate.CareerGoals)

	score := interestScore + mentorshipScore + goalScore
	if containsBoost(activeBoosts, db.BoostPriorityVisibility) {
		score *= e.cfg.PriorityBoostMultiplier
	}

	return Result{
		Score:        score,
		SharedTopics: topics,
		Explanation:  buildExplanation(topics, mentorshipScore > 0, goalScore > 0),
	}
}

func (e *Engine) mentorshipScore(mine, theirs string) float64 {
	if (mine == db.MentorshipSeeking && theirs == db.MentorshipOffering) ||
		(mine == db.MentorshipOffering && theirs == db.MentorshipSeeking) {
		return e.cfg.MentorshipDirectPoints
	}
	if (mine == db.MentorshipBoth || theirs == db.MentorshipBoth) &&
		mine != db.MentorshipNone && theirs != db.MentorshipNone &&
		mine != "" && theirs != "" {
		return e.cfg.MentorshipFlexPoints
	}
	return 0
}

func (e *Engine) goalScore(mine, theirs string) float64 {
	if mine == "" || theirs == "" {
		return 0
	}
	return e.affinity[canonicalGoalPair(mine, theirs)]
}

// canonicalGoalPair orders the tags so lookups are order-independent.
func canonicalGoalPair(a, b string) GoalPair {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a > b {
		a, b = b, a
	}
	return GoalPair{A: a, B: b}
}

// sharedInterests intersects two interest lists case-insensitively,
// deduplicated, preserving the order of mine.
func sharedInterests(mine, theirs []string) []string {
	theirSet := make(map[string]struct{}, len(theirs))
	for _, t := range theirs {
		if norm := normalizeTopic(t); norm != "" {
			theirSet[norm] = struct{}{}
		}
	}

	var topics []string
	seen := make(map[string]struct{}, len(mine))
	for _, m := range mine {
		norm := normalizeTopic(m)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if _, ok := theirSet[norm]; ok {
			topics = append(topics, norm)
		}
	}
	return topics
}

func normalizeTopic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsBoost(boosts []string, boost string) bool {
	for _, b := range boosts {
		if b == boost {
			return true
		}
	}
	return false
}

const genericExplanation = "You might be an interesting connection to explore."

// buildExplanation composes the deterministic one-sentence rationale.
// This is the fallback the pipeline always has available; the AI
// explanation service may phrase something richer but is never required.
func buildExplanation(topics []string, mentorshipFit, goalFit bool) string {
	var reasons []string
	if len(topics) > 0 {
		reasons = append(reasons, "you both care about "+joinTopics(topics))
	}
	if mentorshipFit {
		reasons = append(reasons, "your mentorship preferences line up")
	}
	if goalFit {
		reasons = append(reasons, "your career goals complement each other")
	}
	if len(reasons) == 0 {
		return genericExplanation
	}
	sentence := strings.Join(reasons, ", and ")
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

// FallbackSynergy builds the deterministic match-level summary from the
// shared topics. Used when the AI explanation service is absent or
// fails; same register as the per-score fallback.
func FallbackSynergy(topics []string) string {
	if len(topics) == 0 {
		return "You both wanted to connect. Say hello and find out why."
	}
	return fmt.Sprintf("You connected over a shared interest in %s.", joinTopics(topics))
}

func joinTopics(topics []string) string {
	switch len(topics) {
	case 0:
		return ""
	case 1:
		return topics[0]
	case 2:
		return topics[0] + " and " + topics[1]
	default:
		return strings.Join(topics[:len(topics)-1], ", ") + ", and " + topics[len(topics)-1]
	}
}
