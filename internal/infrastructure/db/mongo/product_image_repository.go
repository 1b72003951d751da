package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

const productImagesCollection = "product_images"

// ProductImageRepository persists catalog images. The at-most-one-primary
// invariant is enforced twice: SetPrimary runs clear-then-set inside a
// multi-document transaction, and a partial unique index on product_id where
// is_primary holds rejects a second primary even on a partially failed write.
type ProductImageRepository struct {
	coll *mongo.Collection
}

func NewProductImageRepository(db *mongo.Database) *ProductImageRepository {
	return &ProductImageRepository{coll: db.Collection(productImagesCollection)}
}

type mongoProductImage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProductID string             `bson:"product_id"`
	ImageURL  string             `bson:"image_url"`
	IsPrimary bool               `bson:"is_primary"`
}

func (r *ProductImageRepository) Insert(ctx context.Context, image *domain.ProductImage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoProductImage{
		ProductID: image.ProductID,
		ImageURL:  image.ImageURL,
		IsPrimary: image.IsPrimary,
	})
	if err != nil {
		return fmt.Errorf("insert product image: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		image.ID = oid.Hex()
	}
	return nil
}

func (r *ProductImageRepository) Update(ctx context.Context, image *domain.ProductImage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(image.ID)
	if err != nil {
		return domain.ErrImageNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"image_url":  image.ImageURL,
		"is_primary": image.IsPrimary,
	}})
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

func (r *ProductImageRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrImageNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

func (r *ProductImageRepository) FindByID(ctx context.Context, id string) (*domain.ProductImage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	var mi mongoProductImage
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("find product image: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *ProductImageRepository) FindAll(ctx context.Context) ([]domain.ProductImage, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *ProductImageRepository) FindByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	return r.findMany(ctx, bson.M{"product_id": productID})
}

func (r *ProductImageRepository) findMany(ctx context.Context, filter bson.M) ([]domain.ProductImage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProductImage
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode product images: %w", err)
	}

	images := make([]domain.ProductImage, 0, len(docs))
	for _, d := range docs {
		images = append(images, *d.toDomain())
	}
	return images, nil
}

// SetPrimary clears is_primary on every image of the product and sets it on
// the target, inside one transaction so concurrent calls serialize at the
// store and no reader observes two primaries.
func (r *ProductImageRepository) SetPrimary(ctx context.Context, id, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrImageNotFound
	}

	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.UpdateMany(sc,
			bson.M{"product_id": productID},
			bson.M{"$set": bson.M{"is_primary": false}},
		); err != nil {
			return nil, fmt.Errorf("clear primary flags: %w", err)
		}

		res, err := r.coll.UpdateByID(sc, oid, bson.M{"$set": bson.M{"is_primary": true}})
		if err != nil {
			return nil, fmt.Errorf("set primary flag: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrImageNotFound
		}
		return nil, nil
	})
	return err
}

// EnsureIndexes creates the product lookup index and the partial unique
// index that backs the single-primary invariant.
func (r *ProductImageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
		{
			Keys: bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().
				SetName("product_id_primary_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_primary": true}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (mi mongoProductImage) toDomain() *domain.ProductImage {
	return &domain.ProductImage{
		ID:        mi.ID.Hex(),
		ProductID: mi.ProductID,
		ImageURL:  mi.ImageURL,
		IsPrimary: mi.IsPrimary,
	}
}
