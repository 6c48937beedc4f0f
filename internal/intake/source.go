// Package intake implements the profile-completion flow: a single state
// machine that walks a user through the questions their profile still
// needs, parameterized by where the next question comes from (a static
// step list or an AI-generated phrasing of it).
//
// Sessions are ephemeral and live in an injected TTL-aware cache. They
// are never authoritative: dropping one just restarts the flow, with no
// impact on decisions or matches.
package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/roomlink/connect/internal/db"
	"github.com/roomlink/connect/internal/logger"
)

// Profile fields collected by the flow, in completion order.
const (
	KeyInterests      = "interests"
	KeySkills         = "skills"
	KeyCareerGoals    = "career_goals"
	KeyMentorshipPref = "mentorship_pref"
)

// Question is one step of the flow.
type Question struct {
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
}

// QuestionSource supplies the next question given the answers collected
// so far. A nil question means the flow is complete.
type QuestionSource interface {
	Next(ctx context.Context, answers map[string]string) (*Question, error)
}

// StaticSource walks a fixed, ordered step list: the classic multi-step
// wizard.
type StaticSource struct {
	Steps []Question
}

// DefaultSteps returns the standard onboarding wizard steps.
func DefaultSteps() []Question {
	return []Question{
		{Key: KeyInterests, Prompt: "What topics are you most interested in? (comma-separated)"},
		{Key: KeySkills, Prompt: "What skills could you share with others? (comma-separated, optional)"},
		{Key: KeyCareerGoals, Prompt: "What brings you here?", Choices: []string{
			"find-cofounder", "find-mentor", "mentor-others", "hire", "explore-jobs", "investors", "learn-ai",
		}},
		{Key: KeyMentorshipPref, Prompt: "Are you seeking or offering mentorship?", Choices: []string{
			db.MentorshipSeeking, db.MentorshipOffering, db.MentorshipBoth, db.MentorshipNone,
		}},
	}
}

// Next returns the first step without an answer.
func (s *StaticSource) Next(_ context.Context, answers map[string]string) (*Question, error) {
	for i := range s.Steps {
		if _, answered := answers[s.Steps[i].Key]; !answered {
			q := s.Steps[i]
			return &q, nil
		}
	}
	return nil, nil
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeneratedSource asks an AI generator to phrase the next pending step
// conversationally, using the answers so far as context. Generation is
// best-effort: any failure falls back to the static prompt, so the flow
// always advances.
type GeneratedSource struct {
	generator contentGenerator
	fallback  *StaticSource
}

// NewGeneratedSource wraps a generator over the given steps.
func NewGeneratedSource(generator contentGenerator, steps []Question) *GeneratedSource {
	return &GeneratedSource{
		generator: generator,
		fallback:  &StaticSource{Steps: steps},
	}
}

// Next picks the pending step from the static order and rephrases it.
func (g *GeneratedSource) Next(ctx context.Context, answers map[string]string) (*Question, error) {
	q, err := g.fallback.Next(ctx, answers)
	if err != nil || q == nil {
		return q, err
	}
	if g.generator == nil {
		return q, nil
	}

	text, err := g.generator.GenerateContent(ctx, buildQuestionPrompt(q, answers))
	if err != nil {
		logger.Debug("generated question unavailable, using static prompt", "key", q.Key, "err", err)
		return q, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return q, nil
	}

	rephrased := *q
	rephrased.Prompt = text
	return &rephrased, nil
}

func buildQuestionPrompt(q *Question, answers map[string]string) string {
	var b strings.Builder
	b.WriteString("You are onboarding a professional into a networking app. ")
	b.WriteString("Rephrase the following profile question as one short, friendly sentence. ")
	b.WriteString("No preamble, no quotes.\n\n")
	fmt.Fprintf(&b, "Question to ask (field %q): %s\n", q.Key, q.Prompt)
	if len(q.Choices) > 0 {
		b.WriteString("Valid choices: " + strings.Join(q.Choices, ", ") + "\n")
	}
	if len(answers) > 0 {
		b.WriteString("Already answered:\n")
		for k, v := range answers {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	b.WriteString("\nRephrased question:")
	return b.String()
}

// ApplyAnswers writes collected answers onto a profile. List-valued
// answers are comma-separated.
func ApplyAnswers(p *db.Profile, answers map[string]string) {
	if p == nil {
		return
	}
	if v, ok := answers[KeyInterests]; ok {
		p.Interests = splitList(v)
	}
	if v, ok := answers[KeySkills]; ok {
		p.Skills = splitList(v)
	}
	if v, ok := answers[KeyCareerGoals]; ok {
		p.CareerGoals = strings.TrimSpace(v)
	}
	if v, ok := answers[KeyMentorshipPref]; ok {
		p.MentorshipPref = strings.TrimSpace(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
