// Package repository provides typed access to accounts, profiles and posts over
// either a SQL store (GORM) or a document store (MongoDB).
package repository

import (
	"context"
	"errors"

	"devconnect/internal/models"
	"devconnect/internal/observability"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Account, error)
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Save(ctx context.Context, profile *models.Profile) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Backend  string
	Accounts AccountRepository
	Profiles ProfileRepository
	Posts    PostRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// instrument starts a store span and returns the derived context plus a
// completion func that ends the span and records latency.
func instrument(ctx context.Context, backend, collection, operation string) (context.Context, func(error)) {
	track := observability.TrackQuery(backend, collection, operation)
	span, ctx := observability.StartStoreSpan(ctx, backend, collection, operation)
	return ctx, func(err error) {
		track()
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		span.End(err)
	}
}
