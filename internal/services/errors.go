// internal/services/errors.go
package services

import "errors"

// Domain errors surfaced to the transport layer, which maps them onto
// HTTP status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSKUTaken           = errors.New("product with this SKU already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("operation not permitted")
	ErrAdminImmutable     = errors.New("admin accounts cannot be deleted")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)
