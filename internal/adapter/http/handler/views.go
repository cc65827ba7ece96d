package handler

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/usecase"
)

type imageView struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type reviewView struct {
	ID        string    `json:"id"`
	Comment   string    `json:"comment"`
	Rating    int32     `json:"rating"`
	Author    *userView `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type listingView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	Country     string     `json:"country"`
	Image       *imageView `json:"image,omitempty"`
	OwnerID     string     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type cardView struct {
	listingView
	ImageURL string `json:"image_url"`
}

type showView struct {
	Listing listingView  `json:"listing"`
	Owner   *userView    `json:"owner,omitempty"`
	Reviews []reviewView `json:"reviews"`
	IsOwner bool         `json:"is_owner"`
}

type editView struct {
	Listing      listingView  `json:"listing"`
	Reviews      []reviewView `json:"reviews"`
	ThumbnailURL string       `json:"thumbnail_url"`
}

func toUserView(u *domain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{ID: u.ID, Username: u.Username}
}

func toListingView(l *domain.Listing) listingView {
	v := listingView{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Country:     l.Country,
		OwnerID:     l.OwnerID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Image != nil {
		v.Image = &imageView{URL: l.Image.URL, Filename: l.Image.Filename}
	}
	return v
}

func toReviewViews(rds []domain.ReviewDetails) []reviewView {
	out := make([]reviewView, 0, len(rds))
	for _, rd := range rds {
		if rd.Review == nil {
			continue
		}
		out = append(out, reviewView{
			ID:        rd.Review.ID,
			Comment:   rd.Review.Comment,
			Rating:    rd.Review.Rating,
			Author:    toUserView(rd.Author),
			CreatedAt: rd.Review.CreatedAt,
		})
	}
	return out
}

func toCardViews(cards []usecase.ListingCard) []cardView {
	out := make([]cardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView{listingView: toListingView(c.Listing), ImageURL: c.ImageURL})
	}
	return out
}

func toShowView(d *domain.ListingDetails, callerID string) showView {
	return showView{
		Listing: toListingView(d.Listing),
		Owner:   toUserView(d.Owner),
		Reviews: toReviewViews(d.Reviews),
		IsOwner: callerID != "" && callerID == d.Listing.OwnerID,
	}
}
