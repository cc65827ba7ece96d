package domain

import "errors"

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidID        = errors.New("invalid identifier")
	ErrMissingUpload    = errors.New("uploaded image is required")
	ErrInvalidImageKey  = errors.New("invalid image key")
	ErrInvalidTransform = errors.New("invalid image transform")
)
