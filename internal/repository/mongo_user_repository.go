package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"admindash/internal/model"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Age       *int          `bson:"age,omitempty"`
	Password  string        `bson:"password,omitempty"`
	Role      string        `bson:"role"`
	IsActive  bool          `bson:"isActive"`
	LastLogin *time.Time    `bson:"lastLogin,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Age:          d.Age,
		PasswordHash: d.Password,
		Role:         d.Role,
		IsActive:     d.IsActive,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

var withoutPassword = bson.D{{Key: "password", Value: 0}}

type mongoUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoUserRepository builds a repository over the users collection of db.
// The unique email index is created by db.EnsureIndexes.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(UsersCollection), now: time.Now}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		Password:  user.PasswordHash,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, false)
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, withPassword)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D, withPassword bool) (*model.User, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}

	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "lastLogin", Value: at.UTC()},
			{Key: "updatedAt", Value: r.now().UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isActive", Value: active},
			{Key: "updatedAt", Value: r.now().UTC()},
		}}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) List(ctx context.Context, opts ListOptions) ([]model.User, int64, error) {
	opts = opts.Normalize()
	filter := bson.D{}
	if opts.Search != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "email", Value: re}},
		}})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit)))
	if err != nil {
		return nil, 0, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	users := make([]model.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toModel())
	}
	return users, total, nil
}
