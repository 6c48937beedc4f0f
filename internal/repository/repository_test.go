package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/roomlink/connect/internal/db"
	"github.com/roomlink/connect/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestDecisionUpsert_Overwrite(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	d, err := repo.Upsert(ctx, 1, 1, 2, db.ActionSkip)
	require.NoError(t, err)
	assert.Equal(t, db.ActionSkip, d.Action)

	d, err = repo.Upsert(ctx, 1, 1, 2, db.ActionConnect)
	require.NoError(t, err)
	assert.Equal(t, db.ActionConnect, d.Action)

	var count int64
	require.NoError(t, dbase.Model(&db.Decision{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDecisionUpsert_DistinctTriples(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// same pair in different rooms, and reverse direction: all distinct rows
	_, err := repo.Upsert(ctx, 1, 1, 2, db.ActionConnect)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 2, 1, 2, db.ActionConnect)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 1, 2, 1, db.ActionConnect)
	require.NoError(t, err)

	var count int64
	require.NoError(t, dbase.Model(&db.Decision{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestHasConnected(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_, err := repo.Upsert(ctx, 1, 1, 2, db.ActionConnect)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 1, 1, 3, db.ActionSkip)
	require.NoError(t, err)

	ok, err := repo.HasConnected(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// skip is not a connect
	ok, err = repo.HasConnected(ctx, 1, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	// direction matters
	ok, err = repo.HasConnected(ctx, 1, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecisionDeleteAll(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_, err := repo.Upsert(ctx, 1, 1, 2, db.ActionSkip)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 1, 1, 3, db.ActionConnect)
	require.NoError(t, err)
	// another user's decision in the same room must survive
	_, err = repo.Upsert(ctx, 1, 2, 3, db.ActionSkip)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(ctx, 1, 1))

	ids, err := repo.DecidedTargetIDs(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := repo.CountDecided(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMatchUpsertPair_ConflictIsNoop(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	first := db.Match{
		ID: "match-a", RoomID: 1, UserA: 1, UserB: 2,
		Score: 6, SharedTopics: []string{"ai"}, Explanation: "first",
	}
	created, got, err := repo.UpsertPair(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "match-a", got.ID)

	// a racing attempt with a different row id collapses onto the survivor
	second := first
	second.ID = "match-b"
	second.Explanation = "second"
	created, got, err = repo.UpsertPair(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "match-a", got.ID)
	assert.Equal(t, "first", got.Explanation)

	var count int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMatchCountForUser(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	_, _, err := repo.UpsertPair(ctx, db.Match{ID: "m1", RoomID: 1, UserA: 1, UserB: 2})
	require.NoError(t, err)
	_, _, err = repo.UpsertPair(ctx, db.Match{ID: "m2", RoomID: 1, UserA: 2, UserB: 3})
	require.NoError(t, err)
	_, _, err = repo.UpsertPair(ctx, db.Match{ID: "m3", RoomID: 2, UserA: 1, UserB: 2})
	require.NoError(t, err)

	count, err := repo.CountForUser(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountForUser(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestContactShareInsert_FirstWins(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewContactShareRepository(dbase)

	inserted, err := repo.Insert(ctx, db.ContactShare{
		MatchID: "m1", UserID: 1, Payload: map[string]interface{}{"email": "a@test.com"},
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, db.ContactShare{
		MatchID: "m1", UserID: 1, Payload: map[string]interface{}{"email": "b@test.com"},
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	shares, err := repo.ListForMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "a@test.com", shares[0].Payload["email"])
}

func TestBoostActiveBoosts(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewBoostRepository(dbase)

	boosts := []db.Boost{
		{UserID: 1, Type: db.BoostPriorityVisibility, Status: db.BoostStatusActive},
		{UserID: 1, Type: db.BoostPriorityVisibility, Status: db.BoostStatusActive}, // duplicate grant
		{UserID: 1, Type: db.BoostExtraMatches, Status: db.BoostStatusExpired},
		{UserID: 2, Type: db.BoostExtraMatches, Status: db.BoostStatusActive},
	}
	require.NoError(t, dbase.Create(&boosts).Error)

	types, err := repo.ActiveBoosts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{db.BoostPriorityVisibility}, types)
}
