package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository using MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingCollectionName),
		logger:     log.Named("ListingRepository"),
	}
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, doc.toDomain())
	}
	return listings, nil
}

// FindByID treats a malformed id the same as an unknown one.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		r.logger.Debug("Malformed listing id", zap.String("listing_id", id))
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing by ID", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := fromDomainListing(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.Reviews == nil {
		doc.Reviews = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	listing.ID = doc.ID.Hex()
	listing.CreatedAt, listing.UpdatedAt = now, now
	if listing.ReviewIDs == nil {
		listing.ReviewIDs = []string{}
	}
	r.logger.Debug("Listing inserted", zap.String("listing_id", listing.ID))
	return nil
}

// Update saves every mutable field of listing.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	if listing.ID == "" {
		return errors.New("cannot update listing without ID")
	}
	doc, err := fromDomainListing(listing)
	if err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()
	if doc.Reviews == nil {
		doc.Reviews = []primitive.ObjectID{}
	}

	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"location":    doc.Location,
		"country":     doc.Country,
		"image":       doc.Image,
		"reviews":     doc.Reviews,
		"updatedAt":   doc.UpdatedAt,
	}
	if !doc.Owner.IsZero() {
		set["owner"] = doc.Owner
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	listing.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindByIDAndDelete returns nil, nil when nothing matched.
func (r *ListingRepository) FindByIDAndDelete(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc listingDocument
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findoneanddelete failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("db deletemany failed: %w", err)
	}
	return result.DeletedCount, nil
}
