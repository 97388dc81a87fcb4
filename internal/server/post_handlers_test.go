package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Save(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func TestPostsRequireToken(t *testing.T) {
	env := newTestServer(t, testServerOptions{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/posts"},
		{http.MethodPost, "/api/posts"},
		{http.MethodGet, "/api/posts/" + models.NewID()},
		{http.MethodPut, "/api/posts/like/" + models.NewID()},
		{http.MethodPost, "/api/posts/comment/" + models.NewID()},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			status, body := doJSON(t, env.app, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, models.CodeUnauthorized, decode[msgBody](t, body).Code)
		})
	}
}

func TestPostLifecycle(t *testing.T) {
	env := newTestServer(t, testServerOptions{})
	alice := register(t, env.app, "Alice")
	bob := register(t, env.app, "Bob")
	aliceID := accountID(t, env.app, alice)
	bobID := accountID(t, env.app, bob)

	status, body := doJSON(t, env.app, http.MethodPost, "/api/posts", alice, map[string]string{"text": " "})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Post content is required", decode[errorsBody](t, body).Errors[0].Msg)

	status, body = doJSON(t, env.app, http.MethodPost, "/api/posts", alice, map[string]string{"text": "first"})
	require.Equal(t, http.StatusOK, status, string(body))
	first := decode[models.Post](t, body)
	assert.Equal(t, aliceID, first.User)
	assert.Equal(t, "Alice", first.Name)
	assert.NotEmpty(t, first.Avatar)
	assert.Empty(t, first.Likes)
	assert.Empty(t, first.Comments)

	status, body = doJSON(t, env.app, http.MethodPost, "/api/posts", bob, map[string]string{"text": "second"})
	require.Equal(t, http.StatusOK, status, string(body))
	second := decode[models.Post](t, body)

	t.Run("list newest first", func(t *testing.T) {
		status, body := doJSON(t, env.app, http.MethodGet, "/api/posts", alice, nil)
		require.Equal(t, http.StatusOK, status)
		posts := decode[[]models.Post](t, body)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)
	})

	t.Run("get one", func(t *testing.T) {
		status, body := doJSON(t, env.app, http.MethodGet, "/api/posts/"+first.ID, bob, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "first", decode[models.Post](t, body).Text)

		status, body = doJSON(t, env.app, http.MethodGet, "/api/posts/"+models.NewID(), bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "No post found", decode[msgBody](t, body).Msg)
	})

	t.Run("like and unlike", func(t *testing.T) {
		status, body := doJSON(t, env.app, http.MethodPut, "/api/posts/like/"+first.ID, bob, nil)
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, []models.Like{{User: bobID}}, decode[[]models.Like](t, body))

		status, body = doJSON(t, env.app, http.MethodPut, "/api/posts/like/"+first.ID, bob, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Post already liked", decode[msgBody](t, body).Msg)

		status, body = doJSON(t, env.app, http.MethodPut, "/api/posts/like/"+first.ID, alice, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []models.Like{{User: aliceID}, {User: bobID}}, decode[[]models.Like](t, body))

		status, body = doJSON(t, env.app, http.MethodPut, "/api/posts/unlike/"+first.ID, bob, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []models.Like{{User: aliceID}}, decode[[]models.Like](t, body))

		status, body = doJSON(t, env.app, http.MethodPut, "/api/posts/unlike/"+first.ID, bob, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Post has not yet been liked", decode[msgBody](t, body).Msg)
	})

	t.Run("comments", func(t *testing.T) {
		status, body := doJSON(t, env.app, http.MethodPost, "/api/posts/comment/"+first.ID, bob, map[string]string{})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Please add text", decode[errorsBody](t, body).Errors[0].Msg)

		status, body = doJSON(t, env.app, http.MethodPost, "/api/posts/comment/"+first.ID, bob, map[string]string{"text": "nice"})
		require.Equal(t, http.StatusOK, status, string(body))
		comments := decode[[]models.Comment](t, body)
		require.Len(t, comments, 1)
		assert.Equal(t, "Bob", comments[0].Name)
		assert.Equal(t, bobID, comments[0].User)

		status, body = doJSON(t, env.app, http.MethodDelete, "/api/posts/comment/"+first.ID+"/"+comments[0].ID, alice, nil)
		assert.Equal(t, http.StatusUnauthorized, status, "post owner cannot remove someone else's comment")
		assert.Equal(t, "User not authorized", decode[msgBody](t, body).Msg)

		status, body = doJSON(t, env.app, http.MethodDelete, "/api/posts/comment/"+first.ID+"/"+models.NewID(), bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Comment does not exist", decode[msgBody](t, body).Msg)

		status, body = doJSON(t, env.app, http.MethodDelete, "/api/posts/comment/"+first.ID+"/"+comments[0].ID, bob, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decode[[]models.Comment](t, body))
	})

	t.Run("delete", func(t *testing.T) {
		status, body := doJSON(t, env.app, http.MethodDelete, "/api/posts/"+first.ID, bob, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "User not authorized", decode[msgBody](t, body).Msg)

		status, body = doJSON(t, env.app, http.MethodDelete, "/api/posts/"+first.ID, alice, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Post removed", decode[msgBody](t, body).Msg)

		status, _ = doJSON(t, env.app, http.MethodGet, "/api/posts/"+first.ID, alice, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	assert.Subset(t, env.events.Types(), []string{
		events.PostCreated, events.PostLiked, events.PostUnliked,
		events.CommentAdded, events.CommentRemoved, events.PostDeleted,
	})
}

func TestPostsWithCache(t *testing.T) {
	env := newTestServer(t, testServerOptions{redis: true})
	token := register(t, env.app, "Cached")

	status, body := doJSON(t, env.app, http.MethodPost, "/api/posts", token, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, status, string(body))
	post := decode[models.Post](t, body)

	// Prime the cache, then check a write is visible on the next read.
	status, _ = doJSON(t, env.app, http.MethodGet, "/api/posts/"+post.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, env.app, http.MethodPut, "/api/posts/like/"+post.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, env.app, http.MethodGet, "/api/posts/"+post.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[models.Post](t, body).Likes, 1)

	status, body = doJSON(t, env.app, http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, status)
	posts := decode[[]models.Post](t, body)
	require.Len(t, posts, 1)
	assert.Len(t, posts[0].Likes, 1)
}

func TestPostHandlersWithMockRepository(t *testing.T) {
	base := newTestServer(t, testServerOptions{})
	token := register(t, base.app, "Mocked")

	posts := new(MockPostRepository)
	store := *base.srv.store
	store.Posts = posts
	srv := newServerFromDeps(t, base.srv.config, Deps{Store: &store, Events: &events.Recorder{}})
	app := srv.App()

	t.Run("store failure is reported as a server error", func(t *testing.T) {
		posts.On("List", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		status, body := doJSON(t, app, http.MethodGet, "/api/posts", token, nil)
		assert.Equal(t, http.StatusInternalServerError, status)
		got := decode[msgBody](t, body)
		assert.Equal(t, "Server Error", got.Msg)
		assert.NotContains(t, string(body), "connection reset")
	})

	t.Run("missing post", func(t *testing.T) {
		id := models.NewID()
		posts.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

		status, body := doJSON(t, app, http.MethodPut, "/api/posts/like/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "No post found", decode[msgBody](t, body).Msg)
	})

	t.Run("save failure", func(t *testing.T) {
		post := &models.Post{ID: models.NewID(), User: models.NewID(), Text: "x"}
		post.Prepare()
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil).Once()
		posts.On("Save", mock.Anything, mock.AnythingOfType("*models.Post")).Return(errors.New("disk full")).Once()

		status, _ := doJSON(t, app, http.MethodPut, "/api/posts/like/"+post.ID, token, nil)
		assert.Equal(t, http.StatusInternalServerError, status)
	})

	posts.AssertExpectations(t)
}
