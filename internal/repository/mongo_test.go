package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMongoStore connects to MONGO_TEST_URI, using a throwaway database that is
// dropped when the test ends.
func newMongoStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB repository tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := &config.Config{MongoURI: uri, MongoDatabase: "devconnect_test_" + models.NewID()[:8]}
	client, db, err := database.ConnectMongo(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoStore(client, db)
}

func TestMongoStore(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	owner := seedAccount(t, s, "mongo@example.com")
	assert.ErrorIs(t, s.Accounts.Create(ctx, &models.Account{Name: "dup", Email: "mongo@example.com"}), ErrDuplicate)

	p := models.NewProfile(owner.ID)
	p.Status = "Developer"
	p.Skills = []string{"go"}
	require.NoError(t, s.Profiles.Create(ctx, p))
	assert.ErrorIs(t, s.Profiles.Create(ctx, models.NewProfile(owner.ID)), ErrDuplicate)

	p.AddEducation(models.Education{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: time.Now()})
	require.NoError(t, s.Profiles.Save(ctx, p))

	got, err := s.Profiles.GetByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Education, 1)
	assert.Equal(t, "MIT", got.Education[0].School)

	post := &models.Post{User: owner.ID, Text: "hello"}
	require.NoError(t, s.Posts.Create(ctx, post))
	require.NoError(t, post.AddLike(owner.ID))
	require.NoError(t, s.Posts.Save(ctx, post))

	fetched, err := s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, fetched.LikedBy(owner.ID))

	n, err := s.Posts.DeleteByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, s.Profiles.DeleteByUser(ctx, owner.ID))
	require.NoError(t, s.Accounts.Delete(ctx, owner.ID))

	_, err = s.Accounts.GetByID(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Posts.Save(ctx, post), ErrNotFound)
}
