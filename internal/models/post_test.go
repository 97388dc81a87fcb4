package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func likeUsers(p *Post) []string {
	out := make([]string, 0, len(p.Likes))
	for _, l := range p.Likes {
		out = append(out, l.User)
	}
	return out
}

func TestPost_Likes(t *testing.T) {
	t.Parallel()
	a, b := NewID(), NewID()
	p := &Post{}
	p.Prepare()

	require.NoError(t, p.AddLike(a))
	require.NoError(t, p.AddLike(b))
	if diff := cmp.Diff([]string{b, a}, likeUsers(p)); diff != "" {
		t.Errorf("likes mismatch (-want +got):\n%s", diff)
	}

	err := p.AddLike(strings.ToUpper(a))
	assert.True(t, errors.Is(err, ErrAlreadyLiked))
	assert.Len(t, p.Likes, 2)

	require.NoError(t, p.RemoveLike(a))
	assert.False(t, p.LikedBy(a))
	assert.True(t, p.LikedBy(b))

	err = p.RemoveLike(a)
	assert.True(t, errors.Is(err, ErrNotLiked))
	assert.Equal(t, "Post has not yet been liked", err.Error())
}

func TestPost_Comments(t *testing.T) {
	t.Parallel()
	p := &Post{}
	p.Prepare()
	author := NewID()

	first := p.AddComment(Comment{User: author, Text: "first"})
	second := p.AddComment(Comment{User: author, Text: "second"})

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Date.IsZero())
	require.Len(t, p.Comments, 2)
	assert.Equal(t, "second", p.Comments[0].Text)

	found, ok := p.FindComment(first.ID)
	require.True(t, ok)
	assert.Equal(t, "first", found.Text)

	_, ok = p.FindComment(NewID())
	assert.False(t, ok)

	assert.True(t, p.RemoveComment(second.ID))
	assert.False(t, p.RemoveComment(second.ID))
	require.Len(t, p.Comments, 1)
	assert.Equal(t, first.ID, p.Comments[0].ID)
}

func TestPost_PrepareKeepsAssignedFields(t *testing.T) {
	t.Parallel()
	p := &Post{ID: "fixed"}
	p.Prepare()
	assert.Equal(t, "fixed", p.ID)
	assert.NotNil(t, p.Likes)
	assert.NotNil(t, p.Comments)
	assert.False(t, p.Date.IsZero())
}
