package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roomlink/connect/internal/db"
)

// MatchRepository provides data access for Match rows.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// UpsertPair inserts the match unless the (room, user_a, user_b) pair
// already exists. A conflict is a no-op, not an error: when two users'
// connect actions race each other and both detect reciprocity, exactly
// one row survives and both callers get it back.
//
// The caller must canonicalize the pair (m.UserA < m.UserB) and set the
// row id before calling.
func (r *MatchRepository) UpsertPair(ctx context.Context, m db.Match) (bool, db.Match, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_a"}, {Name: "user_b"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return false, db.Match{}, res.Error
	}

	created := res.RowsAffected > 0

	// On conflict the surviving row is someone else's insert; read it back.
	out, err := r.GetByPair(ctx, m.RoomID, m.UserA, m.UserB)
	if err != nil {
		return false, db.Match{}, err
	}
	if out == nil {
		return false, db.Match{}, gorm.ErrRecordNotFound
	}
	return created, *out, nil
}

// GetByPair fetches the match for a canonicalized pair, nil when absent.
func (r *MatchRepository) GetByPair(ctx context.Context, roomID, userA, userB uint64) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_a = ? AND user_b = ?", roomID, userA, userB).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a match by row id.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountForUser returns how many matches involve the user in the room.
func (r *MatchRepository) CountForUser(ctx context.Context, roomID, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("room_id = ? AND (user_a = ? OR user_b = ?)", roomID, userID, userID).
		Count(&count).Error
	return count, err
}

// UpdateExplanation backfills the explanation text. Matches are
// immutable otherwise.
func (r *MatchRepository) UpdateExplanation(ctx context.Context, id, explanation string) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", id).
		Update("explanation", explanation).Error
}
