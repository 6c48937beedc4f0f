package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomlink/connect/internal/ai"
	"github.com/roomlink/connect/internal/db"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
	delay    time.Duration
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.response, f.err
}

func testProfiles() (*db.Profile, *db.Profile) {
	me := &db.Profile{
		UserID:         1,
		Interests:      []string{"ai", "chess"},
		Skills:         []string{"go"},
		CareerGoals:    "find-cofounder",
		MentorshipPref: db.MentorshipSeeking,
	}
	other := &db.Profile{
		UserID:      2,
		Interests:   []string{"ai"},
		CareerGoals: "find-cofounder",
	}
	return me, other
}

func TestExplainSynergy_UsesOverlapsInPrompt(t *testing.T) {
	gen := &fakeGenerator{response: "You two should build something with AI together."}
	e := NewExplainer(gen, time.Second)

	me, other := testProfiles()
	out, err := e.ExplainSynergy(context.Background(), ai.SynergyContext{
		Me:          me,
		Other:       other,
		Overlaps:    []string{"ai"},
		RoomContext: "Founders breakfast",
	})
	require.NoError(t, err)
	assert.Equal(t, "You two should build something with AI together.", out)
	assert.Contains(t, gen.prompt, "They overlap on: ai")
	assert.Contains(t, gen.prompt, "Founders breakfast")
	assert.Contains(t, gen.prompt, "career goal: find-cofounder")
}

func TestExplainMatch_FailureMapsToUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	e := NewExplainer(gen, time.Second)

	me, other := testProfiles()
	_, err := e.ExplainMatch(context.Background(), ai.MatchContext{Me: me, Other: other, Score: 6})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestExplainMatch_TimeoutMapsToUnavailable(t *testing.T) {
	gen := &fakeGenerator{response: "late", delay: 200 * time.Millisecond}
	e := NewExplainer(gen, 10*time.Millisecond)

	me, other := testProfiles()
	_, err := e.ExplainMatch(context.Background(), ai.MatchContext{Me: me, Other: other})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestExplainer_NilGenerator(t *testing.T) {
	var e *Explainer
	_, err := e.ExplainSynergy(context.Background(), ai.SynergyContext{})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, "Hello there.", cleanResponse("```\nHello there.\n```"))
	assert.Equal(t, "One line.", cleanResponse("\"One line.\"\n"))
	assert.Equal(t, "a b c", cleanResponse("a\n\nb\tc"))

	long := strings.Repeat("word ", 120)
	cleaned := cleanResponse(long)
	assert.LessOrEqual(t, len([]rune(cleaned)), maxOutputRunes+3)
	assert.True(t, strings.HasSuffix(cleaned, "…"))
}
