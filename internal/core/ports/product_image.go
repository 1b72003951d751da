package ports

import (
	"context"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// AddProductImagesInput carries a batch of uploads for one product.
type AddProductImagesInput struct {
	ProductID string
	Images    []ImageUpload
}

// UpdateProductImageInput replaces the stored file of an existing image.
type UpdateProductImageInput struct {
	ID    string
	Image ImageUpload
}

type ProductImageService interface {
	Add(ctx context.Context, input AddProductImagesInput) error
	Update(ctx context.Context, input UpdateProductImageInput) error
	Delete(ctx context.Context, id string) error
	SetPrimary(ctx context.Context, id string) error
	GetList(ctx context.Context) ([]domain.ProductImage, error)
	GetListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error)
	GetByID(ctx context.Context, id string) (*domain.ProductImage, error)
}

// ProductImageRepository is the persistence capability for catalog images.
// SetPrimary must clear is_primary on every sibling of the product and set it
// on the target as one transactional unit, so no reader ever observes more
// than one primary image for a product.
type ProductImageRepository interface {
	Insert(ctx context.Context, image *domain.ProductImage) error
	Update(ctx context.Context, image *domain.ProductImage) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.ProductImage, error)
	FindAll(ctx context.Context) ([]domain.ProductImage, error)
	FindByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error)
	SetPrimary(ctx context.Context, id, productID string) error
}
