package repository

import (
	"context"
	"testing"

	"devconnect/internal/cache"
	"devconnect/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, newSQLiteStore(t).WithCache(cache.New(rdb))
}

func TestWithCache_NoClientIsIdentity(t *testing.T) {
	s := newSQLiteStore(t)
	assert.Same(t, s, s.WithCache(cache.New(nil)))
}

func TestCachedPosts_InvalidateOnWrite(t *testing.T) {
	mr, s := newCachedStore(t)
	ctx := context.Background()
	author := seedAccount(t, s, "cache@example.com")

	post := &models.Post{User: author.ID, Text: "first"}
	require.NoError(t, s.Posts.Create(ctx, post))

	_, err := s.Posts.List(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostsListKey))

	_, err = s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostKey(post.ID)))

	require.NoError(t, post.AddLike(author.ID))
	require.NoError(t, s.Posts.Save(ctx, post))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))
	assert.False(t, mr.Exists(cache.PostsListKey))

	got, err := s.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.LikedBy(author.ID))

	_, err = s.Posts.DeleteByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	_, err = s.Posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedProfiles_ReadThrough(t *testing.T) {
	mr, s := newCachedStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "cp@example.com")

	_, err := s.Profiles.GetByUser(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(cache.ProfileKey(owner.ID)), "misses must not be cached")

	p := models.NewProfile(owner.ID)
	p.Status = "Dev"
	require.NoError(t, s.Profiles.Create(ctx, p))

	got, err := s.Profiles.GetByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", got.Status)
	assert.True(t, mr.Exists(cache.ProfileKey(owner.ID)))

	got.Status = "Lead"
	require.NoError(t, s.Profiles.Save(ctx, got))
	again, err := s.Profiles.GetByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead", again.Status)

	require.NoError(t, s.Profiles.DeleteByUser(ctx, owner.ID))
	_, err = s.Profiles.GetByUser(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
