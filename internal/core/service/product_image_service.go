package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
	"github.com/b2bplatform/b2b-backend/internal/core/rules"
)

// ImageListCache abstracts the cached per-product image listing (Redis).
// A cache miss or cache error is never fatal; the repository is authoritative.
type ImageListCache interface {
	Get(ctx context.Context, productID string) ([]domain.ProductImage, bool)
	Set(ctx context.Context, productID string, images []domain.ProductImage)
	Invalidate(ctx context.Context, productID string)
}

// ReleaseQueue receives storage keys whose file release failed inline, for
// retry in the background.
type ReleaseQueue interface {
	Enqueue(storageKey string)
}

type productImageService struct {
	repo    ports.ProductImageRepository
	files   ports.FileStore
	cache   ImageListCache
	cleanup ReleaseQueue
	policy  UploadPolicy
	log     zerolog.Logger
}

// NewProductImageService returns a ProductImageService implementation.
// cache and cleanup may be nil; both are optional collaborators.
func NewProductImageService(
	repo ports.ProductImageRepository,
	files ports.FileStore,
	cache ImageListCache,
	cleanup ReleaseQueue,
	policy UploadPolicy,
	log zerolog.Logger,
) ports.ProductImageService {
	return &productImageService{
		repo:    repo,
		files:   files,
		cache:   cache,
		cleanup: cleanup,
		policy:  policy,
		log:     log,
	}
}

// Add validates and stores a batch of images for one product. New images are
// never primary; SetPrimary is the only way to designate one.
func (s *productImageService) Add(ctx context.Context, input ports.AddProductImagesInput) error {
	for _, image := range input.Images {
		if err := s.checkUpload(image); err != nil {
			return err
		}
	}

	for _, image := range input.Images {
		storageKey, err := s.files.Save(ctx, image.Content, image.Filename)
		if err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		record := &domain.ProductImage{
			ProductID: input.ProductID,
			ImageURL:  storageKey,
			IsPrimary: false,
		}
		if err := s.repo.Insert(ctx, record); err != nil {
			// The record never existed; reclaim the file just written.
			s.release(ctx, storageKey)
			return fmt.Errorf("insert image record: %w", err)
		}
	}

	s.invalidate(ctx, input.ProductID)
	s.log.Info().Str("product_id", input.ProductID).Int("count", len(input.Images)).Msg("product images added")
	return nil
}

// Update replaces the stored file of an existing image after it passes the
// same upload checks.
func (s *productImageService) Update(ctx context.Context, input ports.UpdateProductImageInput) error {
	if err := s.checkUpload(input.Image); err != nil {
		return err
	}

	record, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return err
	}

	storageKey, err := s.files.Save(ctx, input.Image.Content, input.Image.Filename)
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}

	previousKey := record.ImageURL
	record.ImageURL = storageKey
	if err := s.repo.Update(ctx, record); err != nil {
		s.release(ctx, storageKey)
		return fmt.Errorf("update image record: %w", err)
	}

	s.release(ctx, previousKey)
	s.invalidate(ctx, record.ProductID)
	s.log.Info().Str("image_id", record.ID).Str("product_id", record.ProductID).Msg("product image updated")
	return nil
}

// Delete removes the record first, then releases the backing file. A failed
// release is logged and retried in the background; the delete still succeeds
// because the record is already gone.
func (s *productImageService) Delete(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete image record: %w", err)
	}

	s.release(ctx, record.ImageURL)
	s.invalidate(ctx, record.ProductID)
	s.log.Info().Str("image_id", id).Str("product_id", record.ProductID).Msg("product image deleted")
	return nil
}

// SetPrimary designates the image as the product's single primary. The
// clear-siblings-then-set step runs as one store transaction, so concurrent
// calls on the same product settle on exactly one primary.
func (s *productImageService) SetPrimary(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetPrimary(ctx, record.ID, record.ProductID); err != nil {
		return fmt.Errorf("set primary image: %w", err)
	}

	s.invalidate(ctx, record.ProductID)
	s.log.Info().Str("image_id", id).Str("product_id", record.ProductID).Msg("primary image changed")
	return nil
}

func (s *productImageService) GetList(ctx context.Context) ([]domain.ProductImage, error) {
	return s.repo.FindAll(ctx)
}

func (s *productImageService) GetListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	if s.cache != nil {
		if images, ok := s.cache.Get(ctx, productID); ok {
			return images, nil
		}
	}

	images, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, productID, images)
	}
	return images, nil
}

func (s *productImageService) GetByID(ctx context.Context, id string) (*domain.ProductImage, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productImageService) checkUpload(image ports.ImageUpload) error {
	return rules.Run(
		rules.ExtensionAllowed(image.Filename, s.policy.AllowedExtensions),
		rules.SizeWithin(image.Size, s.policy.MaxSizeMB),
	)
}

// release deletes a stored file, falling back to the retry queue on failure.
func (s *productImageService) release(ctx context.Context, storageKey string) {
	if err := s.files.Delete(ctx, storageKey); err != nil {
		s.log.Warn().Err(err).Str("storage_key", storageKey).Msg("file release failed, queued for retry")
		if s.cleanup != nil {
			s.cleanup.Enqueue(storageKey)
		}
	}
}

func (s *productImageService) invalidate(ctx context.Context, productID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
}
