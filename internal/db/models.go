package db

import (
	"time"

	"gorm.io/datatypes"
)

// Decision actions.
const (
	ActionSkip    = "skip"
	ActionConnect = "connect"
)

// Mentorship preferences.
const (
	MentorshipSeeking  = "seeking"
	MentorshipOffering = "offering"
	MentorshipBoth     = "both"
	MentorshipNone     = "none"
)

// Boost types.
const (
	BoostPriorityVisibility = "priority_visibility"
	BoostExtraMatches       = "extra_matches"
	BoostSaveContactCard    = "save_contact_card"
)

// Boost statuses.
const (
	BoostStatusActive  = "active"
	BoostStatusExpired = "expired"
)

// User table. Authentication is delegated upstream; this core only needs
// stable identities for profiles to hang off.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile holds a participant's matching-relevant attributes. Owned and
// mutated by the onboarding subsystem; the pipeline reads it only.
// ContactPrefs is opaque here and disclosed only post-match.
type Profile struct {
	UserID         uint64                      `gorm:"primaryKey;autoIncrement:false"`
	Interests      datatypes.JSONSlice[string] `gorm:"type:json"`
	Skills         datatypes.JSONSlice[string] `gorm:"type:json"`
	CareerGoals    string                      `gorm:"size:64"`
	MentorshipPref string                      `gorm:"size:16;default:none"`
	ContactPrefs   datatypes.JSONMap           `gorm:"type:json"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
}

// MatchReady reports whether the profile carries enough signal to enter
// the matching pool. The onboarding wizard drives profiles toward this.
func (p *Profile) MatchReady() bool {
	return len(p.Interests) > 0 && p.CareerGoals != "" && p.MentorshipPref != ""
}

// Room is a bounded group context (an event or event sub-room) within
// which matching happens.
type Room struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:128;not null"`
	Topic     string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// RoomMember links a user into a room (a bounded event context).
// Decisions and Matches are scoped per room.
type RoomMember struct {
	RoomID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	UserID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// Boost is a paid modifier affecting ranking priority or match quota.
// Read-only input to the pipeline.
type Boost struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index:idx_boost_user_status,priority:1;not null"`
	Type      string    `gorm:"size:32;not null"`
	Status    string    `gorm:"size:16;not null;index:idx_boost_user_status,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Decision represents an actor's skip/connect decision on a target
// within a room.
//
// Composite PK: (RoomID, ActorID, TargetID)
//   - Guarantees a single live row per triple (overwrite semantics).
//   - Also serves the reciprocal lookup (room, target, actor) as an
//     exact PK probe for mutual detection.
type Decision struct {
	RoomID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	ActorID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	TargetID  uint64    `gorm:"primaryKey;autoIncrement:false"`
	Action    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Match materializes a reciprocal pair of connect decisions. The pair is
// canonicalized (UserA < UserB) and unique per room, so racing creation
// attempts collapse to one row at the store level. Created only by the
// mutual detector, never by direct API write. Immutable after creation
// except for explanation backfill.
type Match struct {
	ID           string                      `gorm:"primaryKey;size:36"`
	RoomID       uint64                      `gorm:"uniqueIndex:idx_room_pair,priority:1;not null"`
	UserA        uint64                      `gorm:"uniqueIndex:idx_room_pair,priority:2;not null"`
	UserB        uint64                      `gorm:"uniqueIndex:idx_room_pair,priority:3;not null"`
	Score        float64                     `gorm:"not null"`
	SharedTopics datatypes.JSONSlice[string] `gorm:"type:json"`
	Explanation  string                      `gorm:"type:text"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
}

// ContactShare is one member's contact payload for a match. Unique per
// (match, user); never overwritten, re-sharing is a no-op. The match is
// mutually revealed once both members have a row.
type ContactShare struct {
	MatchID   string            `gorm:"primaryKey;size:36"`
	UserID    uint64            `gorm:"primaryKey;autoIncrement:false"`
	Payload   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

// CanonicalPair orders two user ids into the (UserA, UserB) form used by
// the Match unique index.
func CanonicalPair(x, y uint64) (uint64, uint64) {
	if x < y {
		return x, y
	}
	return y, x
}
