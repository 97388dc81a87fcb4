package repository

import (
	"context"
	"errors"

	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const backendMongo = "mongo"

// NewMongoStore returns repositories backed by the document store.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Backend:  backendMongo,
		Accounts: &mongoAccountRepository{coll: db.Collection(database.AccountsCollection), log: observability.NewRepoLogger("accounts", backendMongo)},
		Profiles: &mongoProfileRepository{coll: db.Collection(database.ProfilesCollection), log: observability.NewRepoLogger("profiles", backendMongo)},
		Posts:    &mongoPostRepository{coll: db.Collection(database.PostsCollection), log: observability.NewRepoLogger("posts", backendMongo)},
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type mongoAccountRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *mongoAccountRepository) Create(ctx context.Context, account *models.Account) (err error) {
	ctx, done := instrument(ctx, backendMongo, "accounts", "create")
	defer func() { done(err) }()

	account.Prepare()
	if _, err = r.coll.InsertOne(ctx, account); err != nil {
		err = translateMongo(err)
		if !errors.Is(err, ErrDuplicate) {
			r.log.LogError(ctx, err, "create")
		}
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": account.ID})
	return nil
}

func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (_ *models.Account, err error) {
	ctx, done := instrument(ctx, backendMongo, "accounts", "get")
	defer func() { done(err) }()

	var account models.Account
	if err = translateMongo(r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&account)); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *mongoAccountRepository) GetByEmail(ctx context.Context, email string) (_ *models.Account, err error) {
	ctx, done := instrument(ctx, backendMongo, "accounts", "get_by_email")
	defer func() { done(err) }()

	var account models.Account
	if err = translateMongo(r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&account)); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *mongoAccountRepository) GetByIDs(ctx context.Context, ids []string) (_ []*models.Account, err error) {
	ctx, done := instrument(ctx, backendMongo, "accounts", "get_many")
	defer func() { done(err) }()

	if len(ids) == 0 {
		return []*models.Account{}, nil
	}
	accounts, err := findAll[models.Account](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
	return accounts, translateMongo(err)
}

func (r *mongoAccountRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := instrument(ctx, backendMongo, "accounts", "delete")
	defer func() { done(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

type mongoProfileRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *mongoProfileRepository) GetByUser(ctx context.Context, userID string) (_ *models.Profile, err error) {
	ctx, done := instrument(ctx, backendMongo, "profiles", "get_by_user")
	defer func() { done(err) }()

	var profile models.Profile
	if err = translateMongo(r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)); err != nil {
		return nil, err
	}
	profile.Prepare()
	return &profile, nil
}

func (r *mongoProfileRepository) List(ctx context.Context) (_ []*models.Profile, err error) {
	ctx, done := instrument(ctx, backendMongo, "profiles", "list")
	defer func() { done(err) }()

	profiles, err := findAll[models.Profile](ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, translateMongo(err)
	}
	for _, p := range profiles {
		p.Prepare()
	}
	return profiles, nil
}

func (r *mongoProfileRepository) Create(ctx context.Context, profile *models.Profile) (err error) {
	ctx, done := instrument(ctx, backendMongo, "profiles", "create")
	defer func() { done(err) }()

	profile.Prepare()
	if _, err = r.coll.InsertOne(ctx, profile); err != nil {
		err = translateMongo(err)
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": profile.ID, "user": profile.User})
	return nil
}

func (r *mongoProfileRepository) Save(ctx context.Context, profile *models.Profile) (err error) {
	ctx, done := instrument(ctx, backendMongo, "profiles", "update")
	defer func() { done(err) }()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	if err != nil {
		err = translateMongo(err)
		r.log.LogError(ctx, err, "update")
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	r.log.LogUpdate(ctx, map[string]any{"id": profile.ID})
	return nil
}

func (r *mongoProfileRepository) DeleteByUser(ctx context.Context, userID string) (err error) {
	ctx, done := instrument(ctx, backendMongo, "profiles", "delete")
	defer func() { done(err) }()

	if _, err = r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	r.log.LogDelete(ctx, map[string]any{"user": userID})
	return nil
}

type mongoPostRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "create")
	defer func() { done(err) }()

	post.Prepare()
	if _, err = r.coll.InsertOne(ctx, post); err != nil {
		err = translateMongo(err)
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"id": post.ID, "user": post.User})
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "get")
	defer func() { done(err) }()

	var post models.Post
	if err = translateMongo(r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)); err != nil {
		return nil, err
	}
	post.Prepare()
	return &post, nil
}

func (r *mongoPostRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "list")
	defer func() { done(err) }()

	posts, err := findAll[models.Post](ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, translateMongo(err)
	}
	for _, p := range posts {
		p.Prepare()
	}
	return posts, nil
}

func (r *mongoPostRepository) Save(ctx context.Context, post *models.Post) (err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "update")
	defer func() { done(err) }()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	r.log.LogUpdate(ctx, map[string]any{"id": post.ID})
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "delete")
	defer func() { done(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

func (r *mongoPostRepository) DeleteByUser(ctx context.Context, userID string) (_ int64, err error) {
	ctx, done := instrument(ctx, backendMongo, "posts", "delete_many")
	defer func() { done(err) }()

	res, err := r.coll.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		r.log.LogError(ctx, err, "delete_many")
		return 0, err
	}
	r.log.LogDelete(ctx, map[string]any{"user": userID, "count": res.DeletedCount})
	return res.DeletedCount, nil
}
