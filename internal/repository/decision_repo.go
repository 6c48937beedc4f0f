package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roomlink/connect/internal/db"
)

// DecisionRepository provides data access for the Decision model.
// It encapsulates all queries around skip/connect decisions.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// Upsert inserts or replaces the decision for (room, actor, target).
//
// Behavior:
//   - If the triple exists, its action and updated_at are replaced.
//   - Otherwise a new row is inserted.
//   - The composite PK guarantees a single live row per triple.
//
// Returns the resulting row.
func (r *DecisionRepository) Upsert(
	ctx context.Context,
	roomID, actorID, targetID uint64,
	action string,
) (db.Decision, error) {
	decision := db.Decision{
		RoomID:   roomID,
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
		}).
		Create(&decision).Error
	if err != nil {
		return db.Decision{}, err
	}

	// Re-read so callers see authoritative timestamps after a conflict.
	var out db.Decision
	err = r.db.WithContext(ctx).
		Where("room_id = ? AND actor_id = ? AND target_id = ?", roomID, actorID, targetID).
		First(&out).Error
	return out, err
}

// Get fetches the decision for a triple, nil when none exists.
func (r *DecisionRepository) Get(
	ctx context.Context,
	roomID, actorID, targetID uint64,
) (*db.Decision, error) {
	var d db.Decision
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND actor_id = ? AND target_id = ?", roomID, actorID, targetID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// HasConnected reports whether actor has a live "connect" decision on
// target in the room. This is the reciprocal probe used for mutual
// detection; it hits the composite PK exactly.
func (r *DecisionRepository) HasConnected(
	ctx context.Context,
	roomID, actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("room_id = ? AND actor_id = ? AND target_id = ? AND action = ?",
			roomID, actorID, targetID, db.ActionConnect).
		Count(&count).Error
	return count > 0, err
}

// DecidedTargetIDs lists every target the actor already has a live
// decision for in the room. Used to filter the candidate queue.
func (r *DecisionRepository) DecidedTargetIDs(
	ctx context.Context,
	roomID, actorID uint64,
) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("room_id = ? AND actor_id = ?", roomID, actorID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// CountDecided returns how many candidates the actor has decided on in
// the room.
func (r *DecisionRepository) CountDecided(
	ctx context.Context,
	roomID, actorID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("room_id = ? AND actor_id = ?", roomID, actorID).
		Count(&count).Error
	return count, err
}

// DeleteAll removes every decision the actor made in the room, making
// all candidates eligible again. Match rows are untouched.
func (r *DecisionRepository) DeleteAll(
	ctx context.Context,
	roomID, actorID uint64,
) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND actor_id = ?", roomID, actorID).
		Delete(&db.Decision{}).Error
}
