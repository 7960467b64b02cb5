package apperr

import "catalogweb/pkg/zerror"

var (
	// ProductNotFoundErr signals absence of a product. Accessors return it
	// instead of surfacing a bare storage error; callers must check for it.
	ProductNotFoundErr = zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	ValidationErr = zerror.NewValidationFailed("VALIDATION_FAILED", "validation error")
)
