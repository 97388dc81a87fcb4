package service

import (
	"context"
	"errors"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts    repository.PostRepository
	accounts repository.AccountRepository
	events   events.Publisher
}

func NewPostService(store *repository.Store, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &PostService{
		posts:    store.Posts,
		accounts: store.Accounts,
		events:   publisher,
	}
}

func errNoPost() error { return models.NewNotFoundError("No post found") }

func (s *PostService) author(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, models.CanonicalID(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return account, nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, models.CanonicalID(postID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNoPost()
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) save(ctx context.Context, post *models.Post) error {
	err := s.posts.Save(ctx, post)
	if errors.Is(err, repository.ErrNotFound) {
		return errNoPost()
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostService) publish(ctx context.Context, eventType, actorID, postID string, payload any) {
	_ = s.events.Publish(ctx, events.Event{Type: eventType, ActorID: actorID, PostID: postID, Payload: payload})
}

// notifyAuthor publishes an event that is also addressed to the post's author.
func (s *PostService) notifyAuthor(ctx context.Context, eventType, actorID string, post *models.Post, payload any) {
	_ = s.events.Publish(ctx, events.Event{
		Type:        eventType,
		ActorID:     actorID,
		PostID:      post.ID,
		RecipientID: post.User,
		Payload:     payload,
	})
}

// CreatePost writes a post with a snapshot of the author's name and avatar.
func (s *PostService) CreatePost(ctx context.Context, authorID, text string) (_ *models.Post, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() { span.End(err) }()

	var v validation.Validator
	v.Required("text", text, "Post content is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		User:   author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	span.AddAttributes(attribute.String("post.id", post.ID))

	s.publish(ctx, events.PostCreated, author.ID, post.ID, post)
	return post, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.load(ctx, postID)
}

// DeletePost removes a post owned by the caller.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID string) (err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "DeletePost", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if err := EnsureOwner(post.User, callerID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoPost()
		}
		return models.NewInternalError(err)
	}

	s.publish(ctx, events.PostDeleted, models.CanonicalID(callerID), post.ID, nil)
	return nil
}

// Like adds the caller to the post's like set and returns the updated set.
func (s *PostService) Like(ctx context.Context, postID, callerID string) (_ []models.Like, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "Like", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := post.AddLike(callerID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	s.notifyAuthor(ctx, events.PostLiked, models.CanonicalID(callerID), post, post.Likes)
	return post.Likes, nil
}

// Unlike removes the caller from the post's like set and returns the updated set.
func (s *PostService) Unlike(ctx context.Context, postID, callerID string) (_ []models.Like, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "Unlike", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := post.RemoveLike(callerID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, events.PostUnliked, models.CanonicalID(callerID), post.ID, post.Likes)
	return post.Likes, nil
}

// AddComment prepends a comment by the caller and returns the full comment list.
func (s *PostService) AddComment(ctx context.Context, postID, authorID, text string) (_ []models.Comment, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "AddComment", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	var v validation.Validator
	v.Required("text", text, "Please add text")
	if err := v.Err(); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.AddComment(models.Comment{
		User:   author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	})
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	s.notifyAuthor(ctx, events.CommentAdded, author.ID, post, comment)
	return post.Comments, nil
}

// RemoveComment deletes the caller's comment by sub-id and returns the remaining list.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, callerID string) (_ []models.Comment, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "RemoveComment", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, ok := post.FindComment(commentID)
	if !ok {
		return nil, models.NewNotFoundError("Comment does not exist")
	}
	if err := EnsureOwner(comment.User, callerID); err != nil {
		return nil, err
	}
	removedID := comment.ID
	post.RemoveComment(removedID)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, events.CommentRemoved, models.CanonicalID(callerID), post.ID, map[string]string{"comment_id": removedID})
	return post.Comments, nil
}
