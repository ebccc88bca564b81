package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"admindash/internal/model"
)

// ProductsCollection is the collection holding product documents.
const ProductsCollection = "products"

type productDocument struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	Name        string          `bson:"name"`
	Description string          `bson:"description,omitempty"`
	Price       bson.Decimal128 `bson:"price"`
	Category    string          `bson:"category,omitempty"`
	Stock       int             `bson:"stock"`
	IsActive    bool            `bson:"isActive"`
	CreatedBy   string          `bson:"createdBy,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

func newProductDocument(p *model.Product) (*productDocument, error) {
	price, err := bson.ParseDecimal128(p.Price.String())
	if err != nil {
		return nil, fmt.Errorf("encode price: %w", err)
	}
	return &productDocument{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d *productDocument) toModel() (*model.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	return &model.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    d.Category,
		Stock:       d.Stock,
		IsActive:    d.IsActive,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type mongoProductRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoProductRepository builds a repository over the products collection of db.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection(ProductsCollection), now: time.Now}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *model.Product) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	product.CreatedAt = now
	product.UpdatedAt = now

	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	product.ID = doc.ID.Hex()
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel()
}

func (r *mongoProductRepository) Update(ctx context.Context, product *model.Product) error {
	oid, err := bson.ObjectIDFromHex(product.ID)
	if err != nil {
		return ErrNotFound
	}
	product.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: doc.Name},
			{Key: "description", Value: doc.Description},
			{Key: "price", Value: doc.Price},
			{Key: "category", Value: doc.Category},
			{Key: "stock", Value: doc.Stock},
			{Key: "isActive", Value: doc.IsActive},
			{Key: "updatedAt", Value: doc.UpdatedAt},
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

func (r *mongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context, opts ListOptions) ([]model.Product, int64, error) {
	opts = opts.Normalize()
	filter := bson.D{}
	if opts.Search != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "description", Value: re}},
		}})
	}
	if opts.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: opts.Category})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit)))
	if err != nil {
		return nil, 0, err
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, nil
}
