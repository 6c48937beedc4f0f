// Package ai defines the optional explanation service consumed by the
// matching pipeline. Implementations are best-effort text generators;
// the pipeline never depends on them for correctness and always carries
// a deterministic fallback.
package ai

import (
	"context"
	"errors"

	"github.com/roomlink/connect/internal/db"
)

// ErrUnavailable signals that the service is unconfigured, timed out,
// or failed. Callers recover with their local fallback text and must
// never surface this to the user.
var ErrUnavailable = errors.New("explanation service unavailable")

// MatchContext is the input for phrasing a score rationale.
type MatchContext struct {
	Me    *db.Profile
	Other *db.Profile
	Score float64
}

// SynergyContext is the input for phrasing a mutual-match synergy blurb.
type SynergyContext struct {
	Me          *db.Profile
	Other       *db.Profile
	Overlaps    []string
	RoomContext string
}

// Explainer produces human-readable match rationales.
type Explainer interface {
	ExplainMatch(ctx context.Context, mc MatchContext) (string, error)
	ExplainSynergy(ctx context.Context, sc SynergyContext) (string, error)
}
