package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the stored credential was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrNoCart indicates an operation needs a fetched, non-empty cart.
	ErrNoCart = errors.New("cart is empty")
	// ErrInvalidInput marks caller input rejected before any request is made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoCoupon indicates no coupon application is active.
	ErrNoCoupon = errors.New("no coupon applied")
)
