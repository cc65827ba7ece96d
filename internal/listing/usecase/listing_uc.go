package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("wanderlust/listing-usecase")

// User-facing notices.
const (
	MsgListingNotFound = "Listing not found!"
	MsgListingCreated  = "New listing created successfully!"
	MsgListingUpdated  = "Listing updated successfully!"
	MsgListingDeleted  = "Listing deleted successfully!"
)

// Event subjects.
const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

// Dependencies wires the usecase. Cache, Events and Mailer are optional.
type Dependencies struct {
	Listings domain.ListingRepository
	Users    domain.UserRepository
	Reviews  domain.ReviewRepository
	Images   domain.ImageStore
	Cache    domain.ListingCache
	Events   domain.EventPublisher
	Mailer   domain.Mailer
	CacheTTL time.Duration
}

type ListingUsecase struct {
	listings domain.ListingRepository
	users    domain.UserRepository
	reviews  domain.ReviewRepository
	images   domain.ImageStore
	cache    domain.ListingCache
	events   domain.EventPublisher
	mailer   domain.Mailer
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewListingUsecase(deps Dependencies, log *logger.Logger) *ListingUsecase {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ListingUsecase{
		listings: deps.Listings,
		users:    deps.Users,
		reviews:  deps.Reviews,
		images:   deps.Images,
		cache:    deps.Cache,
		events:   deps.Events,
		mailer:   deps.Mailer,
		cacheTTL: ttl,
		logger:   log.Named("ListingUsecase"),
	}
}

// ListingCard is one entry of the index view. ImageURL is resolved for display
// and is not written back to the store.
type ListingCard struct {
	Listing  *domain.Listing
	ImageURL string
}

type IndexResult struct {
	Cards []ListingCard
	Outcome
}

type ShowResult struct {
	Details *domain.ListingDetails
	Outcome
}

type EditResult struct {
	Listing      *domain.Listing
	Reviews      []domain.ReviewDetails
	ThumbnailURL string
}

type CreateResult struct {
	Listing *domain.Listing
	Outcome
}

type UpdateResult struct {
	Listing *domain.Listing
	Outcome
}

type DeleteResult struct {
	ListingID string
	// Deleted is false when no listing had the id.
	Deleted bool
	Outcome
}

func flash(n domain.Notifier, kind domain.FlashKind, msg string) {
	if n != nil {
		n.Flash(kind, msg)
	}
}

func fail(span oteltrace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Index returns every listing with a display URL resolved for its card.
func (uc *ListingUsecase) Index(ctx context.Context) (*IndexResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Index")
	defer span.End()

	listings, err := uc.listings.FindAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to fetch listings", zap.Error(err))
		fail(span, err)
		return nil, fmt.Errorf("find listings: %w", err)
	}

	res := &IndexResult{Cards: make([]ListingCard, 0, len(listings))}
	for _, l := range listings {
		display, err := ResolveDisplayURL(l.Image, uc.images)
		if err != nil {
			uc.logger.Warn("Image URL build failed, using fallback",
				zap.String("listing_id", l.ID), zap.String("fallback", display), zap.Error(err))
			res.record(EffectImageURL, l.ID, err)
		}
		res.Cards = append(res.Cards, ListingCard{Listing: l, ImageURL: display})
	}
	span.SetAttributes(attribute.Int("listing_count", len(res.Cards)))
	return res, nil
}

// Show returns a listing joined with its owner and its reviews' authors.
// A missing listing flashes an error and returns domain.ErrListingNotFound.
func (uc *ListingUsecase) Show(ctx context.Context, id string, n domain.Notifier) (*ShowResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Show", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	res := &ShowResult{}
	if uc.cache != nil {
		cached, err := uc.cache.GetDetails(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
			res.record(EffectCache, id, err)
		case cached != nil:
			span.SetAttributes(attribute.Bool("cache_hit", true))
			res.Details = cached
			return res, nil
		}
	}

	listing, err := uc.findListing(ctx, id, n)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	details, err := uc.populate(ctx, listing)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	res.Details = details

	if uc.cache != nil {
		if err := uc.cache.SetDetails(ctx, details, uc.cacheTTL); err != nil {
			uc.logger.Warn("Listing cache write failed", zap.String("listing_id", id), zap.Error(err))
			res.record(EffectCache, id, err)
		}
	}
	return res, nil
}

// Create stores a new listing owned by ownerID with the uploaded image attached.
func (uc *ListingUsecase) Create(ctx context.Context, ownerID string, input domain.ListingInput, upload *domain.UploadedImage, n domain.Notifier) (*CreateResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Create", oteltrace.WithAttributes(attribute.String("owner_id", ownerID)))
	defer span.End()

	if upload == nil {
		uc.logger.Error("Create called without an uploaded image", zap.String("owner_id", ownerID))
		fail(span, domain.ErrMissingUpload)
		return nil, domain.ErrMissingUpload
	}

	listing := &domain.Listing{OwnerID: ownerID, ReviewIDs: []string{}}
	input.ApplyTo(listing)
	listing.Image = &domain.Image{URL: upload.URL, Filename: upload.PublicID}

	if err := uc.listings.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.String("owner_id", ownerID), zap.Error(err))
		fail(span, err)
		return nil, fmt.Errorf("create listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing_id", listing.ID))
	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", ownerID))

	flash(n, domain.FlashSuccess, MsgListingCreated)

	res := &CreateResult{Listing: listing}
	uc.publish(ctx, &res.Outcome, SubjectListingCreated, listing)
	uc.notifyOwner(ctx, &res.Outcome, listing)
	return res, nil
}

// Edit returns the listing, its reviews and a thumbnail of the current image.
func (uc *ListingUsecase) Edit(ctx context.Context, id string, n domain.Notifier) (*EditResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Edit", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	listing, err := uc.findListing(ctx, id, n)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	reviews, err := uc.loadReviews(ctx, listing.ReviewIDs, false)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	res := &EditResult{Listing: listing, Reviews: reviews}
	if listing.Image != nil {
		res.ThumbnailURL = ThumbnailURL(listing.Image.URL)
	}
	return res, nil
}

// Update merges submitted fields into the listing. When a new image was
// uploaded the previous asset is destroyed on a best-effort basis and the
// image record is replaced either way.
func (uc *ListingUsecase) Update(ctx context.Context, id string, input domain.ListingInput, upload *domain.UploadedImage, n domain.Notifier) (*UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Update", oteltrace.WithAttributes(
		attribute.String("listing_id", id),
		attribute.Bool("new_image", upload != nil),
	))
	defer span.End()

	listing, err := uc.findListing(ctx, id, n)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	res := &UpdateResult{Listing: listing}
	input.ApplyTo(listing)
	if upload != nil {
		if listing.Image.HasAsset() {
			uc.destroyImage(ctx, &res.Outcome, listing.ID, listing.Image.Filename)
		}
		listing.Image = &domain.Image{URL: upload.URL, Filename: upload.PublicID}
	}

	if err := uc.listings.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to save listing", zap.String("listing_id", id), zap.Error(err))
		fail(span, err)
		return nil, fmt.Errorf("update listing %s: %w", id, err)
	}
	uc.logger.Info("Listing updated", zap.String("listing_id", id))

	flash(n, domain.FlashSuccess, MsgListingUpdated)

	uc.invalidate(ctx, &res.Outcome, id)
	uc.publish(ctx, &res.Outcome, SubjectListingUpdated, listing)
	return res, nil
}

// Delete removes the listing record, destroying its image asset first on a
// best-effort basis. Deleting an unknown id is not an error.
func (uc *ListingUsecase) Delete(ctx context.Context, id string, n domain.Notifier) (*DeleteResult, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Delete", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	res := &DeleteResult{ListingID: id}

	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
		uc.logger.Error("Failed to fetch listing for delete", zap.String("listing_id", id), zap.Error(err))
		fail(span, err)
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	if listing != nil && listing.Image.HasAsset() {
		uc.destroyImage(ctx, &res.Outcome, id, listing.Image.Filename)
	}

	deleted, err := uc.listings.FindByIDAndDelete(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		fail(span, err)
		return nil, fmt.Errorf("delete listing %s: %w", id, err)
	}
	res.Deleted = deleted != nil
	uc.logger.Info("Listing delete finished", zap.String("listing_id", id), zap.Bool("deleted", res.Deleted))

	flash(n, domain.FlashSuccess, MsgListingDeleted)

	uc.invalidate(ctx, &res.Outcome, id)
	if deleted != nil {
		uc.publish(ctx, &res.Outcome, SubjectListingDeleted, deleted)
	}
	return res, nil
}

func (uc *ListingUsecase) findListing(ctx context.Context, id string, n domain.Notifier) (*domain.Listing, error) {
	listing, err := uc.listings.FindByID(ctx, id)
	if errors.Is(err, domain.ErrListingNotFound) {
		uc.logger.Warn("Listing not found", zap.String("listing_id", id))
		flash(n, domain.FlashError, MsgListingNotFound)
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		uc.logger.Error("Failed to fetch listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return listing, nil
}

func (uc *ListingUsecase) populate(ctx context.Context, listing *domain.Listing) (*domain.ListingDetails, error) {
	details := &domain.ListingDetails{Listing: listing}

	if listing.OwnerID != "" {
		owner, err := uc.users.FindByID(ctx, listing.OwnerID)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			uc.logger.Warn("Listing owner no longer exists", zap.String("listing_id", listing.ID), zap.String("owner_id", listing.OwnerID))
		case err != nil:
			return nil, fmt.Errorf("find owner of listing %s: %w", listing.ID, err)
		default:
			details.Owner = owner
		}
	}

	reviews, err := uc.loadReviews(ctx, listing.ReviewIDs, true)
	if err != nil {
		return nil, err
	}
	details.Reviews = reviews
	return details, nil
}

// loadReviews resolves review ids in order. References to reviews that no
// longer exist are dropped.
func (uc *ListingUsecase) loadReviews(ctx context.Context, ids []string, withAuthors bool) ([]domain.ReviewDetails, error) {
	out := make([]domain.ReviewDetails, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	reviews, err := uc.reviews.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	byID := make(map[string]*domain.Review, len(reviews))
	for _, r := range reviews {
		byID[r.ID] = r
	}

	authors := map[string]*domain.User{}
	if withAuthors {
		seen := map[string]bool{}
		authorIDs := make([]string, 0, len(reviews))
		for _, r := range reviews {
			if r.AuthorID != "" && !seen[r.AuthorID] {
				seen[r.AuthorID] = true
				authorIDs = append(authorIDs, r.AuthorID)
			}
		}
		if len(authorIDs) > 0 {
			users, err := uc.users.FindByIDs(ctx, authorIDs)
			if err != nil {
				return nil, fmt.Errorf("find review authors: %w", err)
			}
			for _, u := range users {
				authors[u.ID] = u
			}
		}
	}

	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, domain.ReviewDetails{Review: r, Author: authors[r.AuthorID]})
	}
	return out, nil
}

func (uc *ListingUsecase) destroyImage(ctx context.Context, o *Outcome, listingID, publicID string) {
	if err := uc.images.Destroy(ctx, publicID); err != nil {
		uc.logger.Warn("Image host delete failed",
			zap.String("listing_id", listingID), zap.String("public_id", publicID), zap.Error(err))
		o.record(EffectImageDestroy, publicID, err)
	}
}

func (uc *ListingUsecase) invalidate(ctx context.Context, o *Outcome, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
		o.record(EffectCache, id, err)
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, o *Outcome, subject string, l *domain.Listing) {
	if uc.events == nil {
		return
	}
	payload := map[string]string{"id": l.ID, "owner_id": l.OwnerID, "title": l.Title}
	if err := uc.events.Publish(ctx, subject, payload); err != nil {
		uc.logger.Warn("Failed to publish listing event", zap.String("subject", subject), zap.String("listing_id", l.ID), zap.Error(err))
		o.record(EffectEvent, subject, err)
	}
}

func (uc *ListingUsecase) notifyOwner(ctx context.Context, o *Outcome, l *domain.Listing) {
	if uc.mailer == nil || l.OwnerID == "" {
		return
	}
	owner, err := uc.users.FindByID(ctx, l.OwnerID)
	if err != nil {
		uc.logger.Warn("Cannot notify owner, lookup failed", zap.String("owner_id", l.OwnerID), zap.Error(err))
		o.record(EffectMail, l.OwnerID, err)
		return
	}
	if owner.Email == "" {
		return
	}
	if err := uc.mailer.SendListingCreated(ctx, owner.Email, l.Title); err != nil {
		uc.logger.Warn("Failed to send listing created email", zap.String("owner_id", l.OwnerID), zap.Error(err))
		o.record(EffectMail, owner.Email, err)
	}
}
