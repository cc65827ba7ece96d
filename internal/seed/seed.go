package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
)

const DefaultFolder = "wanderlust_DEV"

// Store is the persistence the seed run owns for its lifetime.
type Store interface {
	Listings() domain.ListingRepository
	Users() domain.UserRepository
	Reviews() domain.ReviewRepository
	Close(ctx context.Context) error
}

// ListingCache is the read-through cache in front of listing details.
type ListingCache interface {
	PurgeAll(ctx context.Context) (int64, error)
}

type Options struct {
	// Folder is the image host folder sample images are uploaded into.
	Folder string
	// Cache, when set, is emptied once the listings collection is cleared.
	Cache ListingCache
	// Now stamps fallback filenames. Defaults to time.Now.
	Now func() time.Time
}

// CreatedUser identifies a sample account written by Run.
type CreatedUser struct {
	ID       string
	Username string
}

// Report summarises a completed run.
type Report struct {
	UsersCreated      int
	ListingsCreated   int
	ReviewsCreated    int
	UploadFallbacks   int
	DestroyFailures   int
	ListingsCleared   int64
	ReviewsCleared    int64
	UsersCleared      int64
	CacheKeysCleared  int64
	CreatedUsers      []CreatedUser
	CreatedListingIDs []string
}

type userFixture struct {
	username string
	email    string
	password string
}

type listingFixture struct {
	title       string
	description string
	price       float64
	location    string
	country     string
	imageURL    string
}

var users = []userFixture{
	{username: "alice", email: "alice@example.com", password: "password1"},
	{username: "bob", email: "bob@example.com", password: "password2"},
}

var listings = []listingFixture{
	{"Cozy Lakeside Cabin", "A peaceful cabin by the lake with great views.", 120, "Lakeview", "USA",
		"https://images.unsplash.com/photo-1639405791326-b1168dd7ad71?w=600&auto=format&fit=crop&q=60"},
	{"Downtown Apartment", "Walkable to restaurants and nightlife.", 160, "City Center", "USA",
		"https://images.unsplash.com/photo-1585793700745-c0013db81e7d?q=80&w=387&auto=format&fit=crop"},
	{"Mountain Retreat", "A rustic cabin in the mountains.", 140, "Highlands", "USA",
		"https://images.unsplash.com/photo-1701825299870-398fb12864bb?q=80&w=774&auto=format&fit=crop"},
	{"Beach Bungalow", "Steps from the sand and surf.", 200, "Seaside", "USA",
		"https://images.unsplash.com/photo-1660645907675-3f708a3d2ee6?q=80&w=435&auto=format&fit=crop"},
	{"Countryside Cottage", "Charming cottage with garden views.", 95, "Countryside", "UK",
		"https://images.unsplash.com/photo-1719008546743-c6f4f4b3f7bf?w=600&auto=format&fit=crop&q=60"},
	{"Modern Studio", "Compact studio with modern amenities.", 80, "Uptown", "Canada",
		"https://images.unsplash.com/photo-1496417263034-38ec4f0b665a?auto=format&fit=crop&w=1200&q=80"},
	{"Historic Townhouse", "Elegant townhouse in historic district.", 180, "Old Town", "France",
		"https://images.unsplash.com/photo-1501785888041-af3ef285b470?auto=format&fit=crop&w=1200&q=80"},
	{"Desert Villa", "Secluded villa with stunning desert views.", 220, "Desert Edge", "Morocco",
		"https://images.unsplash.com/photo-1445019980597-93fa8acb246c?auto=format&fit=crop&w=1200&q=80"},
	{"Forest Cabin", "Quiet cabin surrounded by forest trails.", 110, "Pine Woods", "Germany",
		"https://images.unsplash.com/photo-1505692794403-3f2b5d7b6b6b?auto=format&fit=crop&w=1200&q=80"},
}

// Run wipes the store and loads the fixed sample data. The store is closed
// before Run returns, whether or not seeding succeeded.
func Run(ctx context.Context, store Store, images domain.ImageStore, opts Options, log *logger.Logger) (report *Report, err error) {
	log = log.Named("seed")
	if opts.Folder == "" {
		opts.Folder = DefaultFolder
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	defer func() {
		if cerr := store.Close(context.Background()); cerr != nil {
			log.Error("Failed to close store", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("close store: %w", cerr)
			}
			return
		}
		log.Info("Store connection closed")
	}()

	s := &seeder{store: store, images: images, opts: opts, logger: log, report: &Report{}}
	if err := s.clear(ctx); err != nil {
		return s.report, err
	}
	owners, err := s.createUsers(ctx)
	if err != nil {
		return s.report, err
	}
	created, err := s.createListings(ctx, owners)
	if err != nil {
		return s.report, err
	}
	if err := s.createReviews(ctx, owners, created); err != nil {
		return s.report, err
	}

	log.Info("Seeding complete",
		zap.Int("users", s.report.UsersCreated),
		zap.Int("listings", s.report.ListingsCreated),
		zap.Int("reviews", s.report.ReviewsCreated),
		zap.Int("upload_fallbacks", s.report.UploadFallbacks))
	return s.report, nil
}

type seeder struct {
	store  Store
	images domain.ImageStore
	opts   Options
	logger *logger.Logger
	report *Report
}

func (s *seeder) clear(ctx context.Context) error {
	existing, err := s.store.Listings().FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list existing listings: %w", err)
	}
	for _, l := range existing {
		if !l.Image.HasAsset() {
			continue
		}
		if err := s.images.Destroy(ctx, l.Image.Filename); err != nil {
			s.report.DestroyFailures++
			s.logger.Warn("Failed to delete image asset", zap.String("listing_id", l.ID), zap.String("public_id", l.Image.Filename), zap.Error(err))
		}
	}

	if s.report.ReviewsCleared, err = s.store.Reviews().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}
	if s.report.ListingsCleared, err = s.store.Listings().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}
	if s.report.UsersCleared, err = s.store.Users().DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	if s.opts.Cache == nil {
		return nil
	}
	if s.report.CacheKeysCleared, err = s.opts.Cache.PurgeAll(ctx); err != nil {
		return fmt.Errorf("clear listing cache: %w", err)
	}
	s.logger.Info("Listing cache cleared", zap.Int64("keys", s.report.CacheKeysCleared))
	return nil
}

func (s *seeder) createUsers(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(users))
	for _, f := range users {
		u := &domain.User{Username: f.username, Email: f.email}
		if err := s.store.Users().Register(ctx, u, f.password); err != nil {
			return nil, fmt.Errorf("register %s: %w", f.username, err)
		}
		s.report.UsersCreated++
		s.report.CreatedUsers = append(s.report.CreatedUsers, CreatedUser{ID: u.ID, Username: u.Username})
		out = append(out, u)
	}
	return out, nil
}

func (s *seeder) createListings(ctx context.Context, owners []*domain.User) ([]*domain.Listing, error) {
	out := make([]*domain.Listing, 0, len(listings))
	for i, f := range listings {
		l := &domain.Listing{
			Title:       f.title,
			Description: f.description,
			Price:       f.price,
			Location:    f.location,
			Country:     f.country,
			OwnerID:     owners[i%2].ID,
			Image:       s.image(ctx, i, f.imageURL),
		}
		if err := s.store.Listings().Create(ctx, l); err != nil {
			return nil, fmt.Errorf("create listing %q: %w", f.title, err)
		}
		s.report.ListingsCreated++
		s.report.CreatedListingIDs = append(s.report.CreatedListingIDs, l.ID)
		out = append(out, l)
	}
	return out, nil
}

// image uploads the sample picture, falling back to the source URL and a
// synthesized filename when the image host is unavailable.
func (s *seeder) image(ctx context.Context, i int, source string) *domain.Image {
	up, err := s.images.Upload(ctx, source, s.opts.Folder)
	if err == nil {
		return &domain.Image{URL: up.URL, Filename: up.PublicID}
	}
	s.report.UploadFallbacks++
	s.logger.Warn("Image upload failed, using source URL", zap.Int("index", i), zap.Error(err))
	return &domain.Image{
		URL:      source,
		Filename: fmt.Sprintf("seed-%d-%d", s.opts.Now().UnixMilli(), i),
	}
}

func (s *seeder) createReviews(ctx context.Context, owners []*domain.User, created []*domain.Listing) error {
	alice, bob := owners[0], owners[1]
	reviews := []*domain.Review{
		{Comment: "Amazing stay, highly recommend!", Rating: 5, AuthorID: bob.ID},
		{Comment: "Nice location but a bit noisy at night.", Rating: 3, AuthorID: alice.ID},
	}
	for _, r := range reviews {
		if err := s.store.Reviews().Create(ctx, r); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		s.report.ReviewsCreated++
	}

	if len(created) < 2 {
		return nil
	}
	for i, r := range reviews {
		l := created[i]
		l.ReviewIDs = append(l.ReviewIDs, r.ID)
		if err := s.store.Listings().Update(ctx, l); err != nil {
			return fmt.Errorf("attach review to %q: %w", l.Title, err)
		}
	}
	return nil
}

// UnavailableImages stands in for an image host that could not be opened.
// Every upload and delete fails with Err, so Run falls back to source URLs.
type UnavailableImages struct {
	Err error
}

func (u UnavailableImages) Upload(context.Context, string, string) (*domain.UploadedImage, error) {
	return nil, u.Err
}

func (u UnavailableImages) Put(context.Context, io.Reader, int64, string, string, string) (*domain.UploadedImage, error) {
	return nil, u.Err
}

func (u UnavailableImages) Destroy(context.Context, string) error { return u.Err }

func (u UnavailableImages) URL(string, domain.Transform) (string, error) { return "", u.Err }
