package repository

import (
	"context"
	"errors"

	"devconnect/internal/models"
	"devconnect/internal/observability"

	"gorm.io/gorm"
)

const backendSQL = "sql"

// NewGormStore returns repositories backed by db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Backend:  backendSQL,
		Accounts: NewAccountRepository(db),
		Profiles: NewProfileRepository(db),
		Posts:    NewPostRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// translate maps GORM errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type accountRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, log: observability.NewRepoLogger("accounts", backendSQL)}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) (err error) {
	ctx, done := instrument(ctx, backendSQL, "accounts", "create")
	defer func() { done(err) }()

	if err = translate(r.db.WithContext(ctx).Create(account).Error); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			r.log.LogError(ctx, err, "create")
		}
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": account.ID})
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (_ *models.Account, err error) {
	ctx, done := instrument(ctx, backendSQL, "accounts", "get")
	defer func() { done(err) }()

	var account models.Account
	if err = translate(r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (_ *models.Account, err error) {
	ctx, done := instrument(ctx, backendSQL, "accounts", "get_by_email")
	defer func() { done(err) }()

	var account models.Account
	if err = translate(r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByIDs(ctx context.Context, ids []string) (_ []*models.Account, err error) {
	ctx, done := instrument(ctx, backendSQL, "accounts", "get_many")
	defer func() { done(err) }()

	accounts := []*models.Account{}
	if len(ids) == 0 {
		return accounts, nil
	}
	if err = translate(r.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := instrument(ctx, backendSQL, "accounts", "delete")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if err = translate(res.Error); err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles", backendSQL)}
}

func (r *profileRepository) GetByUser(ctx context.Context, userID string) (_ *models.Profile, err error) {
	ctx, done := instrument(ctx, backendSQL, "profiles", "get_by_user")
	defer func() { done(err) }()

	var profile models.Profile
	if err = translate(r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error); err != nil {
		return nil, err
	}
	profile.Prepare()
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) (_ []*models.Profile, err error) {
	ctx, done := instrument(ctx, backendSQL, "profiles", "list")
	defer func() { done(err) }()

	profiles := []*models.Profile{}
	if err = translate(r.db.WithContext(ctx).Order("date ASC").Find(&profiles).Error); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		p.Prepare()
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (err error) {
	ctx, done := instrument(ctx, backendSQL, "profiles", "create")
	defer func() { done(err) }()

	if err = translate(r.db.WithContext(ctx).Create(profile).Error); err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": profile.ID, "user": profile.User})
	return nil
}

// Save writes every column of an existing profile. A profile deleted
// concurrently is reported as ErrNotFound rather than recreated.
func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) (err error) {
	ctx, done := instrument(ctx, backendSQL, "profiles", "update")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(profile).Select("*").Updates(profile)
	if err = translate(res.Error); err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.LogUpdate(ctx, map[string]any{"id": profile.ID})
	return nil
}

func (r *profileRepository) DeleteByUser(ctx context.Context, userID string) (err error) {
	ctx, done := instrument(ctx, backendSQL, "profiles", "delete")
	defer func() { done(err) }()

	if err = translate(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{}).Error); err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	r.log.LogDelete(ctx, map[string]any{"user": userID})
	return nil
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts", backendSQL)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "create")
	defer func() { done(err) }()

	if err = translate(r.db.WithContext(ctx).Create(post).Error); err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": post.ID, "user": post.User})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "get")
	defer func() { done(err) }()

	var post models.Post
	if err = translate(r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error); err != nil {
		return nil, err
	}
	post.Prepare()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "list")
	defer func() { done(err) }()

	posts := []*models.Post{}
	if err = translate(r.db.WithContext(ctx).Order("date DESC").Find(&posts).Error); err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Prepare()
	}
	return posts, nil
}

// Save writes every column of an existing post. A post deleted concurrently is
// reported as ErrNotFound rather than recreated.
func (r *postRepository) Save(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "update")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(post).Select("*").Updates(post)
	if err = translate(res.Error); err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.LogUpdate(ctx, map[string]any{"id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "delete")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if err = translate(res.Error); err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

func (r *postRepository) DeleteByUser(ctx context.Context, userID string) (_ int64, err error) {
	ctx, done := instrument(ctx, backendSQL, "posts", "delete_many")
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Post{})
	if err = translate(res.Error); err != nil {
		r.log.LogError(ctx, err, "delete_many")
		return 0, err
	}
	r.log.LogDelete(ctx, map[string]any{"user": userID, "count": res.RowsAffected})
	return res.RowsAffected, nil
}
