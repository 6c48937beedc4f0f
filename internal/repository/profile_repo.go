package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/roomlink/connect/internal/db"
)

// ProfileRepository reads profile records and room membership. The
// profiles themselves are owned by the onboarding subsystem; the
// pipeline treats them as read-only input.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetProfile fetches one user's profile, nil when absent.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uint64) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListRoomMembers returns the profiles of everyone in the room, in
// join order so downstream stable sorts are deterministic.
func (r *ProfileRepository) ListRoomMembers(ctx context.Context, roomID uint64) ([]db.Profile, error) {
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Table("profiles p").
		Joins("JOIN room_members rm ON rm.user_id = p.user_id").
		Where("rm.room_id = ?", roomID).
		Order("rm.joined_at, p.user_id").
		Select("p.*").
		Find(&profiles).Error
	return profiles, err
}

// GetRoom fetches room metadata, nil when absent.
func (r *ProfileRepository) GetRoom(ctx context.Context, roomID uint64) (*db.Room, error) {
	var room db.Room
	err := r.db.WithContext(ctx).Where("id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CountRoomMembers returns the size of the room.
func (r *ProfileRepository) CountRoomMembers(ctx context.Context, roomID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.RoomMember{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// BoostRepository reads the boost ledger. Boosts are paid modifiers
// granted elsewhere; the pipeline only consumes the active set.
type BoostRepository struct {
	db *gorm.DB
}

// NewBoostRepository creates a new repository bound to the given DB connection.
func NewBoostRepository(database *gorm.DB) *BoostRepository {
	return &BoostRepository{db: database}
}

// ActiveBoosts returns the distinct active boost types for a user.
func (r *BoostRepository) ActiveBoosts(ctx context.Context, userID uint64) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&db.Boost{}).
		Distinct("type").
		Where("user_id = ? AND status = ?", userID, db.BoostStatusActive).
		Pluck("type", &types).Error
	return types, err
}
