package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roomlink/connect/internal/db"
)

func profile(id uint64, interests []string, goal, mentorship string) db.Profile {
	return db.Profile{
		UserID:         id,
		Interests:      interests,
		CareerGoals:    goal,
		MentorshipPref: mentorship,
	}
}

func TestScore_SharedInterestsOnly(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"golang", "climbing", "coffee"}, "", "")
	other := profile(2, []string{"climbing", "golang", "chess"}, "", "")

	res := e.Score(&me, &other, nil)
	assert.Equal(t, 4.0, res.Score) // 2 shared interests x 2
	assert.Equal(t, []string{"golang", "climbing"}, res.SharedTopics)
}

func TestScore_InterestsCaseInsensitiveAndDeduplicated(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"GoLang", "golang", " Golang "}, "", "")
	other := profile(2, []string{"GOLANG"}, "", "")

	res := e.Score(&me, &other, nil)
	assert.Equal(t, 2.0, res.Score) // counted once despite repeats
	assert.Equal(t, []string{"golang"}, res.SharedTopics)
}

func TestScore_MentorshipSeekingOffering(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"ai"}, "", db.MentorshipSeeking)
	other := profile(2, []string{"ai"}, "", db.MentorshipOffering)

	res := e.Score(&me, &other, nil)
	assert.Equal(t, 5.0, res.Score) // 2 (shared) + 3 (mentorship)
}

func TestScore_MentorshipBothFlexible(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, nil, "", db.MentorshipBoth)
	other := profile(2, nil, "", db.MentorshipSeeking)
	assert.Equal(t, 2.0, e.Score(&me, &other, nil).Score)

	// "none" on either side kills the flexible term
	none := profile(3, nil, "", db.MentorshipNone)
	assert.Equal(t, 0.0, e.Score(&me, &none, nil).Score)
}

func TestScore_CareerGoalHighAffinity(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"startups"}, "find-cofounder", "")
	other := profile(2, []string{"startups"}, "find-cofounder", "")

	res := e.Score(&me, &other, nil)
	assert.Equal(t, 6.0, res.Score) // 2 (shared) + 4 (goal)
}

func TestScore_CareerGoalSymmetric(t *testing.T) {
	e := NewEngine(DefaultConfig())

	hirer := profile(1, nil, "hire", "")
	seeker := profile(2, nil, "explore-jobs", "")

	// order-independent lookup
	assert.Equal(t, 4.0, e.Score(&hirer, &seeker, nil).Score)
	assert.Equal(t, 4.0, e.Score(&seeker, &hirer, nil).Score)
}

func TestScore_MentorMenteePair(t *testing.T) {
	e := NewEngine(DefaultConfig())

	mentor := profile(1, nil, "mentor-others", db.MentorshipOffering)
	mentee := profile(2, nil, "find-mentor", db.MentorshipSeeking)

	res := e.Score(&mentor, &mentee, nil)
	assert.Equal(t, 7.0, res.Score) // 3 (mentorship) + 4 (goal)
}

func TestScore_MediumAffinity(t *testing.T) {
	e := NewEngine(DefaultConfig())

	learner := profile(1, nil, "learn-ai", "")
	mentor := profile(2, nil, "mentor-others", "")

	assert.Equal(t, 2.0, e.Score(&learner, &mentor, nil).Score)
}

func TestScore_PriorityBoostMultiplier(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"ai"}, "find-cofounder", "")
	other := profile(2, []string{"ai"}, "find-cofounder", "")

	res := e.Score(&me, &other, []string{db.BoostPriorityVisibility})
	assert.InDelta(t, 6.6, res.Score, 1e-9) // (2+4) x 1.10, applied once
}

func TestScore_NeverFailsOnMissingInput(t *testing.T) {
	e := NewEngine(DefaultConfig())

	empty := db.Profile{UserID: 1}
	other := db.Profile{UserID: 2}

	res := e.Score(&empty, &other, nil)
	assert.Equal(t, 0.0, res.Score)
	assert.NotEmpty(t, res.Explanation)

	res = e.Score(nil, nil, nil)
	assert.Equal(t, 0.0, res.Score)
	assert.NotEmpty(t, res.Explanation)
}

func TestScore_ExplanationPriorityOrder(t *testing.T) {
	e := NewEngine(DefaultConfig())

	me := profile(1, []string{"ai", "robotics"}, "find-mentor", db.MentorshipSeeking)
	other := profile(2, []string{"ai", "robotics"}, "mentor-others", db.MentorshipOffering)

	res := e.Score(&me, &other, nil)
	assert.Contains(t, res.Explanation, "ai and robotics")
	assert.Contains(t, res.Explanation, "mentorship")
	assert.Contains(t, res.Explanation, "career goals")

	// shared interests are named before anything else
	assert.Regexp(t, "^You both care", res.Explanation)
}

func TestFallbackSynergy(t *testing.T) {
	assert.Equal(t,
		"You connected over a shared interest in ai.",
		FallbackSynergy([]string{"ai"}))
	assert.Equal(t,
		"You connected over a shared interest in ai, chess, and rowing.",
		FallbackSynergy([]string{"ai", "chess", "rowing"}))
	assert.NotEmpty(t, FallbackSynergy(nil))
}
