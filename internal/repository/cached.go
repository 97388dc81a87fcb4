package repository

import (
	"context"

	"devconnect/internal/cache"
	"devconnect/internal/models"
)

// WithCache wraps the profile and post repositories with Redis cache-aside
// reads. Writes go to the store first and then invalidate the affected keys.
func (s *Store) WithCache(c *cache.Cache) *Store {
	if c.Client() == nil {
		return s
	}
	wrapped := *s
	wrapped.Profiles = &cachedProfileRepository{ProfileRepository: s.Profiles, cache: c}
	wrapped.Posts = &cachedPostRepository{PostRepository: s.Posts, cache: c}
	return &wrapped
}

type cachedProfileRepository struct {
	ProfileRepository
	cache *cache.Cache
}

func (r *cachedProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		p, err := r.ProfileRepository.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		profile = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	profile.Prepare()
	return &profile, nil
}

func (r *cachedProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := r.cache.Aside(ctx, cache.ProfilesListKey, &profiles, cache.ProfilesListTTL, func() error {
		var err error
		profiles, err = r.ProfileRepository.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		p.Prepare()
	}
	return profiles, nil
}

func (r *cachedProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.ProfileRepository.Create(ctx, profile); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, cache.ProfileKey(profile.User), cache.ProfilesListKey)
	return nil
}

func (r *cachedProfileRepository) Save(ctx context.Context, profile *models.Profile) error {
	err := r.ProfileRepository.Save(ctx, profile)
	r.cache.Invalidate(ctx, cache.ProfileKey(profile.User), cache.ProfilesListKey)
	return err
}

func (r *cachedProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	err := r.ProfileRepository.DeleteByUser(ctx, userID)
	r.cache.Invalidate(ctx, cache.ProfileKey(userID), cache.ProfilesListKey)
	return err
}

type cachedPostRepository struct {
	PostRepository
	cache *cache.Cache
}

func (r *cachedPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		p, err := r.PostRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Prepare()
	return &post, nil
}

func (r *cachedPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
		var err error
		posts, err = r.PostRepository.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Prepare()
	}
	return posts, nil
}

func (r *cachedPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.PostRepository.Create(ctx, post); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, cache.PostsListKey)
	return nil
}

func (r *cachedPostRepository) Save(ctx context.Context, post *models.Post) error {
	err := r.PostRepository.Save(ctx, post)
	r.cache.Invalidate(ctx, cache.PostKey(post.ID), cache.PostsListKey)
	return err
}

func (r *cachedPostRepository) Delete(ctx context.Context, id string) error {
	err := r.PostRepository.Delete(ctx, id)
	r.cache.Invalidate(ctx, cache.PostKey(id), cache.PostsListKey)
	return err
}

// DeleteByUser drops the whole post cache; the deleted ids are not known here.
func (r *cachedPostRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.PostRepository.DeleteByUser(ctx, userID)
	if n > 0 {
		r.cache.InvalidatePrefix(ctx, "post:")
	}
	r.cache.Invalidate(ctx, cache.PostsListKey)
	return n, err
}
