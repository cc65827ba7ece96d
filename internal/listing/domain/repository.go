package domain

import (
	"context"
	"io"
	"time"
)

type ListingRepository interface {
	FindAll(ctx context.Context) ([]*Listing, error)
	// FindByID returns ErrListingNotFound when no listing has id.
	FindByID(ctx context.Context, id string) (*Listing, error)
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	// FindByIDAndDelete removes the listing and returns it, or nil if it did not exist.
	FindByIDAndDelete(ctx context.Context, id string) (*Listing, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type UserRepository interface {
	// Register hashes password and stores the user.
	Register(ctx context.Context, user *User, password string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	FindByIDs(ctx context.Context, ids []string) ([]*Review, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ListingCache stores populated listing details.
type ListingCache interface {
	GetDetails(ctx context.Context, id string) (*ListingDetails, error)
	SetDetails(ctx context.Context, details *ListingDetails, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits listing lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Mailer sends owner notifications.
type Mailer interface {
	SendListingCreated(ctx context.Context, toEmail, listingTitle string) error
}

// Transform selects a derived variant of a hosted image.
type Transform struct {
	Width int
	Crop  string
}

// UploadedImage is what the image host returns for a stored asset.
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore is the external image host.
type ImageStore interface {
	// Upload stores the image found at source, a http(s) URL or a local path.
	Upload(ctx context.Context, source, folder string) (*UploadedImage, error)
	// Put stores an image read from r.
	Put(ctx context.Context, r io.Reader, size int64, filename, contentType, folder string) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
	// URL builds the delivery URL of publicID with t applied.
	URL(publicID string, t Transform) (string, error)
}
