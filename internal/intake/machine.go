package intake

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	svcErr "github.com/roomlink/connect/internal/errors"
)

// Progress is what the machine hands back after each step: the next
// question to ask, or Done with the collected answers.
type Progress struct {
	SessionID string
	Question  *Question
	Done      bool
	Answers   map[string]string
}

// Machine drives one intake flow over a QuestionSource. The same
// machine serves both the static wizard and the AI-driven flow; only
// the source differs.
type Machine struct {
	store  *Store
	source QuestionSource
}

// NewMachine builds a machine over a session store and question source.
func NewMachine(store *Store, source QuestionSource) *Machine {
	return &Machine{store: store, source: source}
}

// Start opens a new session for the user and returns the first question.
func (m *Machine) Start(ctx context.Context, userID uint64) (Progress, error) {
	if userID == 0 {
		return Progress{}, svcErr.InvalidArgument("user_id is required")
	}

	now := time.Now().Unix()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Answers:   make(map[string]string),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return Progress{}, svcErr.Map(err)
	}
	return m.progress(ctx, sess)
}

// Resume returns the pending question for an existing session. Expired
// sessions surface as not-found; the caller restarts with Start.
func (m *Machine) Resume(ctx context.Context, sessionID string) (Progress, error) {
	sess, err := m.load(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}
	return m.progress(ctx, sess)
}

// Answer records one answer, refreshes the session TTL, and advances to
// the next question. Answers may be revised: re-answering a key
// overwrites it.
func (m *Machine) Answer(ctx context.Context, sessionID, key, value string) (Progress, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Progress{}, svcErr.InvalidArgument("answer key is required")
	}

	sess, err := m.load(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}

	sess.Answers[key] = strings.TrimSpace(value)
	sess.UpdatedAt = time.Now().Unix()
	if err := m.store.Save(ctx, sess); err != nil {
		return Progress{}, svcErr.Map(err)
	}

	prog, err := m.progress(ctx, sess)
	if err != nil {
		return Progress{}, err
	}
	if prog.Done {
		// Completed sessions have served their purpose.
		_ = m.store.Delete(ctx, sess.ID)
	}
	return prog, nil
}

func (m *Machine) load(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, svcErr.InvalidArgument("session_id is required")
	}
	sess, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if sess == nil {
		return nil, svcErr.NotFound("intake session not found or expired")
	}
	if sess.Answers == nil {
		sess.Answers = make(map[string]string)
	}
	return sess, nil
}

func (m *Machine) progress(ctx context.Context, sess *Session) (Progress, error) {
	q, err := m.source.Next(ctx, sess.Answers)
	if err != nil {
		return Progress{}, svcErr.Map(err)
	}
	if q == nil {
		return Progress{
			SessionID: sess.ID,
			Done:      true,
			Answers:   sess.Answers,
		}, nil
	}
	return Progress{SessionID: sess.ID, Question: q}, nil
}
