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

const customersCollection = "customers"

// CustomerRepository persists customer accounts.
type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(customersCollection)}
}

type mongoCustomer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CompanyName  string             `bson:"company_name"`
	Email        string             `bson:"email"`
	PasswordHash []byte             `bson:"password_hash"`
	PasswordSalt []byte             `bson:"password_salt"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var mc mongoCustomer
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}

	return &domain.Customer{
		ID:           mc.ID.Hex(),
		CompanyName:  mc.CompanyName,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		PasswordSalt: mc.PasswordSalt,
		CreatedAt:    unixToTime(mc.CreatedAt),
		UpdatedAt:    unixToTime(mc.UpdatedAt),
	}, nil
}

// EnsureIndexes creates the unique email index on the customers collection.
func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
