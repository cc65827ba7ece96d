package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type imageDocument struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Price       float64              `bson:"price"`
	Location    string               `bson:"location"`
	Country     string               `bson:"country"`
	Image       *imageDocument       `bson:"image,omitempty"`
	Owner       primitive.ObjectID   `bson:"owner,omitempty"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"hash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Comment   string             `bson:"comment"`
	Rating    int32              `bson:"rating"`
	Author    primitive.ObjectID `bson:"author,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// optionalObjectID converts a possibly empty hex id.
func optionalObjectID(hex, field string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %q", domain.ErrInvalidID, field, hex)
	}
	return oid, nil
}

func objectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		oid, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, h)
		}
		out = append(out, oid)
	}
	return out, nil
}

// validObjectIDs drops ids that are not valid hex, for lookups where an
// unknown id simply matches nothing.
func validObjectIDs(hexes []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func fromDomainListing(l *domain.Listing) (*listingDocument, error) {
	id, err := optionalObjectID(l.ID, "listing id")
	if err != nil {
		return nil, err
	}
	owner, err := optionalObjectID(l.OwnerID, "owner")
	if err != nil {
		return nil, err
	}
	reviews, err := objectIDs(l.ReviewIDs)
	if err != nil {
		return nil, err
	}

	doc := &listingDocument{
		ID:          id,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Country:     l.Country,
		Owner:       owner,
		Reviews:     reviews,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Image != nil {
		doc.Image = &imageDocument{URL: l.Image.URL, Filename: l.Image.Filename}
	}
	return doc, nil
}

func (d *listingDocument) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Location:    d.Location,
		Country:     d.Country,
		OwnerID:     hexOrEmpty(d.Owner),
		ReviewIDs:   hexIDs(d.Reviews),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Image != nil {
		l.Image = &domain.Image{URL: d.Image.URL, Filename: d.Image.Filename}
	}
	return l
}

func fromDomainUser(u *domain.User) (*userDocument, error) {
	id, err := optionalObjectID(u.ID, "user id")
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:           id,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}, nil
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func fromDomainReview(r *domain.Review) (*reviewDocument, error) {
	id, err := optionalObjectID(r.ID, "review id")
	if err != nil {
		return nil, err
	}
	author, err := optionalObjectID(r.AuthorID, "author")
	if err != nil {
		return nil, err
	}
	return &reviewDocument{
		ID:        id,
		Comment:   r.Comment,
		Rating:    r.Rating,
		Author:    author,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (d *reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID:        d.ID.Hex(),
		Comment:   d.Comment,
		Rating:    d.Rating,
		AuthorID:  hexOrEmpty(d.Author),
		CreatedAt: d.CreatedAt,
	}
}
