package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roomlink/connect/internal/ai"
	"github.com/roomlink/connect/internal/db"
	"github.com/roomlink/connect/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const (
	defaultTimeout = 2 * time.Second
	maxOutputRunes = 300
)

// Explainer phrases match rationales through Gemini. Every call is
// bounded by a short timeout and any failure collapses to
// ai.ErrUnavailable so callers fall back to deterministic text.
type Explainer struct {
	generator contentGenerator
	timeout   time.Duration
}

// NewExplainer wraps a generator. timeout <= 0 uses the default budget.
func NewExplainer(generator contentGenerator, timeout time.Duration) *Explainer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Explainer{generator: generator, timeout: timeout}
}

// ExplainMatch asks Gemini to phrase why two profiles score well together.
func (e *Explainer) ExplainMatch(ctx context.Context, mc ai.MatchContext) (string, error) {
	if e == nil || e.generator == nil {
		return "", ai.ErrUnavailable
	}

	prompt := buildMatchPrompt(mc)
	return e.generate(ctx, prompt)
}

// ExplainSynergy asks Gemini for a mutual-match synergy blurb.
func (e *Explainer) ExplainSynergy(ctx context.Context, sc ai.SynergyContext) (string, error) {
	if e == nil || e.generator == nil {
		return "", ai.ErrUnavailable
	}

	prompt := buildSynergyPrompt(sc)
	return e.generate(ctx, prompt)
}

func (e *Explainer) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Debug("gemini explanation failed", "err", err)
		return "", fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}

	text := cleanResponse(raw)
	if text == "" {
		return "", ai.ErrUnavailable
	}
	return text, nil
}

func buildMatchPrompt(mc ai.MatchContext) string {
	var b strings.Builder
	b.WriteString("You write one friendly sentence explaining why two professionals at a networking event should connect. ")
	b.WriteString("No preamble, no quotes, no markdown. Second person plural.\n\n")
	b.WriteString("Person A: " + describeProfile(mc.Me) + "\n")
	b.WriteString("Person B: " + describeProfile(mc.Other) + "\n")
	fmt.Fprintf(&b, "Compatibility score: %.1f\n", mc.Score)
	b.WriteString("\nSentence:")
	return b.String()
}

func buildSynergyPrompt(sc ai.SynergyContext) string {
	var b strings.Builder
	b.WriteString("Two attendees at a networking event both chose to connect with each other. ")
	b.WriteString("Write one or two warm sentences about what they could explore together. ")
	b.WriteString("No preamble, no quotes, no markdown. Second person plural.\n\n")
	b.WriteString("Person A: " + describeProfile(sc.Me) + "\n")
	b.WriteString("Person B: " + describeProfile(sc.Other) + "\n")
	if len(sc.Overlaps) > 0 {
		b.WriteString("They overlap on: " + strings.Join(sc.Overlaps, ", ") + "\n")
	}
	if sc.RoomContext != "" {
		b.WriteString("Event context: " + sc.RoomContext + "\n")
	}
	b.WriteString("\nSentences:")
	return b.String()
}

func describeProfile(p *db.Profile) string {
	if p == nil {
		return "no profile details available"
	}
	var parts []string
	if len(p.Interests) > 0 {
		parts = append(parts, "interests: "+strings.Join(p.Interests, ", "))
	}
	if len(p.Skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(p.Skills, ", "))
	}
	if p.CareerGoals != "" {
		parts = append(parts, "career goal: "+p.CareerGoals)
	}
	if p.MentorshipPref != "" && p.MentorshipPref != db.MentorshipNone {
		parts = append(parts, "mentorship: "+p.MentorshipPref)
	}
	if len(parts) == 0 {
		return "no profile details available"
	}
	return strings.Join(parts, "; ")
}

// cleanResponse strips markdown fences and surrounding quotes, collapses
// newlines, and caps length so oversized generations never reach storage.
func cleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	text = strings.Trim(text, "`\" \n")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxOutputRunes {
		text = string(runes[:maxOutputRunes])
		if idx := strings.LastIndex(text, " "); idx > 0 {
			text = text[:idx]
		}
		text = strings.TrimRight(text, ".,;: ") + "…"
	}
	return text
}
