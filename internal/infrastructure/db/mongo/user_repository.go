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

const usersCollection = "users"

// UserRepository persists staff users. The email field carries a unique
// index, so a concurrent duplicate registration fails at insert time.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoClaim struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	PasswordHash []byte             `bson:"password_hash"`
	PasswordSalt []byte             `bson:"password_salt"`
	ImageURL     string             `bson:"image_url,omitempty"`
	Claims       []mongoClaim       `bson:"claims,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		FullName:     user.FullName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		PasswordSalt: user.PasswordSalt,
		ImageURL:     user.ImageURL,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	// fetch back to get ID
	return r.FindByEmail(ctx, user.Email)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// ListOperationClaims returns the claims owned by the user, in stored order.
func (r *UserRepository) ListOperationClaims(ctx context.Context, userID string) ([]domain.OperationClaim, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrPrincipalNotFound
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find user claims: %w", err)
	}

	claims := make([]domain.OperationClaim, 0, len(mu.Claims))
	for _, c := range mu.Claims {
		claims = append(claims, domain.OperationClaim{ID: c.ID, Name: c.Name})
	}
	return claims, nil
}

// EnsureIndexes creates the unique email index on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		FullName:     mu.FullName,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		PasswordSalt: mu.PasswordSalt,
		ImageURL:     mu.ImageURL,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
