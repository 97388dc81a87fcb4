// Package seed fills a store with demo accounts, profiles and posts for local
// development and manual testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Options configures a demo seed run.
type Options struct {
	Accounts        int
	PostsPerAccount int
	CommentsPerPost int
	// MaxDays bounds how far back post dates are spread.
	MaxDays int
	// Password is shared by every demo account.
	Password string
	// FixturesPath overrides the built-in fixture lists.
	FixturesPath string
	// Seed makes a run repeatable when non-zero.
	Seed int64
	// Force seeds even when the store already holds posts or profiles.
	Force bool
}

// DefaultOptions are used by the server's --seed flag and the admin CLI.
func DefaultOptions() Options {
	return Options{
		Accounts:        8,
		PostsPerAccount: 3,
		CommentsPerPost: 2,
		MaxDays:         90,
		Password:        "password123",
	}
}

// Result counts what a run created.
type Result struct {
	Accounts int  `json:"accounts"`
	Profiles int  `json:"profiles"`
	Posts    int  `json:"posts"`
	Comments int  `json:"comments"`
	Likes    int  `json:"likes"`
	Skipped  bool `json:"skipped"`
}

// Demo seeds store. Without opts.Force it does nothing when the store already
// has content.
func Demo(ctx context.Context, store *repository.Store, opts Options) (Result, error) {
	var res Result

	if !opts.Force {
		empty, err := isEmpty(ctx, store)
		if err != nil {
			return res, err
		}
		if !empty {
			middleware.Logger.Info("store already has content; skipping demo seed")
			res.Skipped = true
			return res, nil
		}
	}

	fixtures, err := LoadFixtures(opts.FixturesPath)
	if err != nil {
		return res, err
	}
	if opts.Password == "" {
		opts.Password = DefaultOptions().Password
	}
	// One hash for every account keeps large runs fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return res, fmt.Errorf("hash demo password: %w", err)
	}

	f := NewFactory(fixtures, opts.Seed, opts.MaxDays)

	accounts := make([]*models.Account, 0, opts.Accounts)
	for i := 0; i < opts.Accounts; i++ {
		a := f.Account(string(hash))
		if err := store.Accounts.Create(ctx, a); err != nil {
			return res, fmt.Errorf("create account %s: %w", a.Email, err)
		}
		accounts = append(accounts, a)
		res.Accounts++

		if err := store.Profiles.Create(ctx, f.Profile(a)); err != nil {
			return res, fmt.Errorf("create profile for %s: %w", a.Email, err)
		}
		res.Profiles++
	}

	for _, author := range accounts {
		for i := 0; i < opts.PostsPerAccount; i++ {
			post := f.Post(author)
			res.Likes += likeFromOthers(f, post, accounts)
			for j := 0; j < opts.CommentsPerPost && len(accounts) > 0; j++ {
				commenter := accounts[f.faker.Number(0, len(accounts)-1)]
				post.AddComment(f.Comment(post, commenter))
				res.Comments++
			}
			if err := store.Posts.Create(ctx, post); err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts++
		}
	}

	middleware.Logger.Info("demo seed complete",
		slog.Int("accounts", res.Accounts),
		slog.Int("profiles", res.Profiles),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

// likeFromOthers adds likes from a random subset of the other accounts.
func likeFromOthers(f *Factory, post *models.Post, accounts []*models.Account) int {
	liked := 0
	for _, a := range accounts {
		if a.ID == post.User || !f.faker.Bool() {
			continue
		}
		if post.AddLike(a.ID) == nil {
			liked++
		}
	}
	return liked
}

func isEmpty(ctx context.Context, store *repository.Store) (bool, error) {
	posts, err := store.Posts.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list posts: %w", err)
	}
	profiles, err := store.Profiles.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list profiles: %w", err)
	}
	return len(posts) == 0 && len(profiles) == 0, nil
}
