package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2bplatform/b2b-backend/internal/api/metrics"
	"github.com/b2bplatform/b2b-backend/internal/core/domain"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
)

type ProductImageHandler struct {
	images ports.ProductImageService
}

func NewProductImageHandler(images ports.ProductImageService) *ProductImageHandler {
	return &ProductImageHandler{images: images}
}

// Add uploads one or more images for a product. Uploads are validated as a
// batch; new images are never primary.
//
// @Summary      Upload product images
// @Tags         product-images
// @Accept       multipart/form-data
// @Produce      json
// @Param        product_id  formData  string  true  "Product id"
// @Param        images      formData  file    true  "Image files (jpg, jpeg, gif, png)"
// @Success      201  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Router       /product-images [post]
func (h *ProductImageHandler) Add(c echo.Context) error {
	productID := c.FormValue("product_id")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one image is required")
	}

	uploads, closeAll, err := openUploads(headers)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is unreadable")
	}
	defer closeAll()

	if err := h.images.Add(c.Request().Context(), ports.AddProductImagesInput{
		ProductID: productID,
		Images:    uploads,
	}); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(uploadResult(err)).Inc()
		return err
	}

	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "images uploaded"})
}

// Update replaces the stored file of an existing image.
//
// @Summary      Replace a product image
// @Tags         product-images
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Image id"
// @Param        image  formData  file    true  "Replacement file"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /product-images/{id} [put]
func (h *ProductImageHandler) Update(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is unreadable")
	}
	defer file.Close()

	if err := h.images.Update(c.Request().Context(), ports.UpdateProductImageInput{
		ID: c.Param("id"),
		Image: ports.ImageUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		},
	}); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(uploadResult(err)).Inc()
		return err
	}

	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "image updated"})
}

// Delete removes an image record and releases its stored file.
//
// @Summary      Delete a product image
// @Tags         product-images
// @Produce      json
// @Param        id  path  string  true  "Image id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /product-images/{id} [delete]
func (h *ProductImageHandler) Delete(c echo.Context) error {
	if err := h.images.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "image deleted"})
}

// SetPrimary designates an image as its product's single primary.
//
// @Summary      Set the primary product image
// @Tags         product-images
// @Produce      json
// @Param        id  path  string  true  "Image id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /product-images/{id}/primary [post]
func (h *ProductImageHandler) SetPrimary(c echo.Context) error {
	if err := h.images.SetPrimary(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.PrimaryImageSwitchesTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "primary image set"})
}

// List returns every stored image.
//
// @Summary      List all product images
// @Tags         product-images
// @Produce      json
// @Success      200  {array}  domain.ProductImage
// @Router       /product-images [get]
func (h *ProductImageHandler) List(c echo.Context) error {
	images, err := h.images.GetList(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, images)
}

// ListByProduct returns the images of one product.
//
// @Summary      List images of a product
// @Tags         product-images
// @Produce      json
// @Param        productId  path  string  true  "Product id"
// @Success      200  {array}  domain.ProductImage
// @Router       /products/{productId}/images [get]
func (h *ProductImageHandler) ListByProduct(c echo.Context) error {
	images, err := h.images.GetListByProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, images)
}

// GetByID returns a single image record.
//
// @Summary      Get a product image
// @Tags         product-images
// @Produce      json
// @Param        id  path  string  true  "Image id"
// @Success      200  {object}  domain.ProductImage
// @Failure      404  {object}  map[string]string
// @Router       /product-images/{id} [get]
func (h *ProductImageHandler) GetByID(c echo.Context) error {
	image, err := h.images.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, image)
}

// openUploads opens every file header and returns the uploads plus a single
// closer for all opened files.
func openUploads(headers []*multipart.FileHeader) ([]ports.ImageUpload, func(), error) {
	uploads := make([]ports.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, ports.ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}
	return uploads, closeAll, nil
}

func uploadResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidImageExtension), errors.Is(err, domain.ErrImageTooLarge):
		return "rejected"
	default:
		return "error"
	}
}
