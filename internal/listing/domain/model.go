package domain

import "time"

// Image is the listing's embedded image record. Filename is the image host's
// content key; URL is a display URL derived from it and may be stale.
type Image struct {
	URL      string
	Filename string
}

// HasAsset reports whether the image references a remote asset.
func (i *Image) HasAsset() bool {
	return i != nil && i.Filename != ""
}

type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Location    string
	Country     string
	Image       *Image
	OwnerID     string
	ReviewIDs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListingInput carries submitted listing fields. A nil field was not submitted.
type ListingInput struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Country     *string
}

// ApplyTo copies every submitted field onto l.
func (in ListingInput) ApplyTo(l *Listing) {
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Location != nil {
		l.Location = *in.Location
	}
	if in.Country != nil {
		l.Country = *in.Country
	}
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Review struct {
	ID        string
	Comment   string
	Rating    int32
	AuthorID  string
	CreatedAt time.Time
}

// ReviewDetails is a review joined with its author. Author is nil when the
// author record no longer exists.
type ReviewDetails struct {
	Review *Review
	Author *User
}

// ListingDetails is a listing joined with its owner and reviews, in listing order.
type ListingDetails struct {
	Listing *Listing
	Owner   *User
	Reviews []ReviewDetails
}
