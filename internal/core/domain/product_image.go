package domain

// ProductImage is a stored catalog image. For any product at most one image
// has IsPrimary set; SetPrimary flips the flag atomically across siblings.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}
