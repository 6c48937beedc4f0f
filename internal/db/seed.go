package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedInterests = []string{
	"ai", "robotics", "fintech", "climate", "design", "chess",
	"climbing", "coffee", "open-source", "photography",
}

var seedGoals = []string{
	"find-cofounder", "find-mentor", "mentor-others", "hire", "explore-jobs", "investors", "learn-ai",
}

var seedMentorship = []string{
	MentorshipSeeking, MentorshipOffering, MentorshipBoth, MentorshipNone,
}

// SeedDemoData resets the database and populates it with demo rooms,
// users, profiles, boosts, and decisions.
//
// Behavior:
//  1. Clears all pipeline tables.
//  2. Creates 2 rooms and 20 users with hashed passwords and
//     match-ready profiles.
//  3. Spreads users across the rooms and grants a few boosts.
//  4. Generates decisions with ~70% connects; every 3rd decision also
//     inserts the reciprocal connect so demo runs produce mutuals.
//
// Matches are deliberately not seeded: only the mutual detector creates
// them.
func SeedDemoData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{
		"contact_shares", "matches", "decisions", "boosts", "room_members", "profiles", "rooms", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	rooms := []Room{
		{ID: 1, Name: "Founders Breakfast", Topic: "early-stage startups"},
		{ID: 2, Name: "AI Builders", Topic: "applied machine learning"},
	}
	if err := db.Create(&rooms).Error; err != nil {
		return fmt.Errorf("failed to seed rooms: %w", err)
	}

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		interests := pickInterests(r)
		profile := Profile{
			UserID:         user.ID,
			Interests:      interests,
			Skills:         interests[:1],
			CareerGoals:    seedGoals[r.Intn(len(seedGoals))],
			MentorshipPref: seedMentorship[r.Intn(len(seedMentorship))],
			ContactPrefs: map[string]interface{}{
				"email":    user.Email,
				"linkedin": fmt.Sprintf("linkedin.com/in/user%d", i),
			},
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		// everyone joins room 1; half also join room 2
		memberships := []RoomMember{{RoomID: 1, UserID: user.ID}}
		if i%2 == 0 {
			memberships = append(memberships, RoomMember{RoomID: 2, UserID: user.ID})
		}
		if err := db.Create(&memberships).Error; err != nil {
			return fmt.Errorf("failed to seed membership: %w", err)
		}

		// a few paid boosts
		switch {
		case i%7 == 0:
			db.Create(&Boost{UserID: user.ID, Type: BoostPriorityVisibility, Status: BoostStatusActive})
		case i%5 == 0:
			db.Create(&Boost{UserID: user.ID, Type: BoostExtraMatches, Status: BoostStatusActive})
		}
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Seed Decisions ---
	var users []User
	if err := db.Find(&users).Error; err != nil {
		return err
	}

	counter := 0
	for _, actor := range users {
		for j := 0; j < 8; j++ {
			target := users[r.Intn(len(users))]
			if actor.ID == target.ID {
				continue
			}

			action := ActionSkip
			if r.Intn(100) < 70 {
				action = ActionConnect
			}

			// guarantee mutual connects every 3rd pair
			if counter%3 == 0 {
				action = ActionConnect
				recip := Decision{RoomID: 1, ActorID: target.ID, TargetID: actor.ID, Action: ActionConnect}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "room_id"}, {Name: "actor_id"}, {Name: "target_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
				}).Create(&recip)
			}

			decision := Decision{RoomID: 1, ActorID: actor.ID, TargetID: target.ID, Action: action}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "room_id"}, {Name: "actor_id"}, {Name: "target_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
			}).Create(&decision).Error; err != nil {
				return fmt.Errorf("failed to seed decision: %w", err)
			}

			counter++
		}
	}
	log.Printf("Seeded %d decisions.", counter)

	return nil
}

func pickInterests(r *rand.Rand) []string {
	n := 2 + r.Intn(3)
	perm := r.Perm(len(seedInterests))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, seedInterests[idx])
	}
	return out
}
