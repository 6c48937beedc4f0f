package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roomlink/connect/internal/db"
)

// ContactShareRepository provides data access for ContactShare rows.
type ContactShareRepository struct {
	db *gorm.DB
}

// NewContactShareRepository creates a new repository bound to the given DB connection.
func NewContactShareRepository(database *gorm.DB) *ContactShareRepository {
	return &ContactShareRepository{db: database}
}

// Insert stores a contact share unless one already exists for
// (match, user). Re-sharing is a no-op: the first payload wins and is
// never overwritten. Reports whether a new row was written.
func (r *ContactShareRepository) Insert(ctx context.Context, share db.ContactShare) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&share)
	return res.RowsAffected > 0, res.Error
}

// ListForMatch returns every contact share recorded for a match.
// At most two rows exist, one per pair member.
func (r *ContactShareRepository) ListForMatch(ctx context.Context, matchID string) ([]db.ContactShare, error) {
	var shares []db.ContactShare
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("user_id").
		Find(&shares).Error
	return shares, err
}
