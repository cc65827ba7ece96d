package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

const listingKeyPrefix = "listing:"

type cachedImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type cachedListing struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Location    string       `json:"location"`
	Country     string       `json:"country"`
	Image       *cachedImage `json:"image,omitempty"`
	OwnerID     string       `json:"owner_id"`
	ReviewIDs   []string     `json:"review_ids"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// cachedUser never carries the password hash.
type cachedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type cachedReview struct {
	ID        string      `json:"id"`
	Comment   string      `json:"comment"`
	Rating    int32       `json:"rating"`
	AuthorID  string      `json:"author_id"`
	CreatedAt time.Time   `json:"created_at"`
	Author    *cachedUser `json:"author,omitempty"`
}

type cachedDetails struct {
	Listing cachedListing  `json:"listing"`
	Owner   *cachedUser    `json:"owner,omitempty"`
	Reviews []cachedReview `json:"reviews"`
}

// ListingCache stores populated listing details in Redis as JSON.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

func listingKey(id string) string { return listingKeyPrefix + id }

// GetDetails returns nil, nil on a cache miss.
func (c *ListingCache) GetDetails(ctx context.Context, id string) (*domain.ListingDetails, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cd cachedDetails
	if err := json.Unmarshal(data, &cd); err != nil {
		return nil, fmt.Errorf("decode cached listing %s: %w", id, err)
	}
	return cd.toDomain(), nil
}

func (c *ListingCache) SetDetails(ctx context.Context, details *domain.ListingDetails, ttl time.Duration) error {
	if details == nil || details.Listing == nil {
		return errors.New("cannot cache empty listing details")
	}
	data, err := json.Marshal(fromDomainDetails(details))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(details.Listing.ID), data, ttl).Err()
}

func (c *ListingCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}

const purgeScanCount = 100

// PurgeAll removes every cached listing and reports how many keys were
// deleted. Other key families sharing the database are left alone.
func (c *ListingCache) PurgeAll(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, listingKeyPrefix+"*", purgeScanCount).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan cached listings: %w", err)
		}
		if len(keys) > 0 {
			pipe := c.client.Pipeline()
			dels := make([]*redis.IntCmd, 0, len(keys))
			for _, key := range keys {
				dels = append(dels, pipe.Del(ctx, key))
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return deleted, fmt.Errorf("delete cached listings: %w", err)
			}
			for _, d := range dels {
				deleted += d.Val()
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func fromDomainUser(u *domain.User) *cachedUser {
	if u == nil {
		return nil
	}
	return &cachedUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (u *cachedUser) toDomain() *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{ID: u.ID, Username: u.Username, Email: u.Email}
}

func fromDomainDetails(d *domain.ListingDetails) cachedDetails {
	l := d.Listing
	cd := cachedDetails{
		Listing: cachedListing{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Location:    l.Location,
			Country:     l.Country,
			OwnerID:     l.OwnerID,
			ReviewIDs:   l.ReviewIDs,
			CreatedAt:   l.CreatedAt,
			UpdatedAt:   l.UpdatedAt,
		},
		Owner:   fromDomainUser(d.Owner),
		Reviews: make([]cachedReview, 0, len(d.Reviews)),
	}
	if l.Image != nil {
		cd.Listing.Image = &cachedImage{URL: l.Image.URL, Filename: l.Image.Filename}
	}
	for _, rd := range d.Reviews {
		if rd.Review == nil {
			continue
		}
		cd.Reviews = append(cd.Reviews, cachedReview{
			ID:        rd.Review.ID,
			Comment:   rd.Review.Comment,
			Rating:    rd.Review.Rating,
			AuthorID:  rd.Review.AuthorID,
			CreatedAt: rd.Review.CreatedAt,
			Author:    fromDomainUser(rd.Author),
		})
	}
	return cd
}

func (cd *cachedDetails) toDomain() *domain.ListingDetails {
	l := &domain.Listing{
		ID:          cd.Listing.ID,
		Title:       cd.Listing.Title,
		Description: cd.Listing.Description,
		Price:       cd.Listing.Price,
		Location:    cd.Listing.Location,
		Country:     cd.Listing.Country,
		OwnerID:     cd.Listing.OwnerID,
		ReviewIDs:   cd.Listing.ReviewIDs,
		CreatedAt:   cd.Listing.CreatedAt,
		UpdatedAt:   cd.Listing.UpdatedAt,
	}
	if cd.Listing.Image != nil {
		l.Image = &domain.Image{URL: cd.Listing.Image.URL, Filename: cd.Listing.Image.Filename}
	}
	details := &domain.ListingDetails{
		Listing: l,
		Owner:   cd.Owner.toDomain(),
		Reviews: make([]domain.ReviewDetails, 0, len(cd.Reviews)),
	}
	for _, r := range cd.Reviews {
		details.Reviews = append(details.Reviews, domain.ReviewDetails{
			Review: &domain.Review{
				ID:        r.ID,
				Comment:   r.Comment,
				Rating:    r.Rating,
				AuthorID:  r.AuthorID,
				CreatedAt: r.CreatedAt,
			},
			Author: r.Author.toDomain(),
		})
	}
	return details
}
