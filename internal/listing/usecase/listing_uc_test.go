package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testDeps struct {
	listings *MockListingRepository
	users    *MockUserRepository
	reviews  *MockReviewRepository
	images   *MockImageStore
	cache    *MockListingCache
	events   *MockEventPublisher
	mailer   *MockMailer
}

func (d testDeps) assertAll(t *testing.T) {
	d.listings.AssertExpectations(t)
	d.users.AssertExpectations(t)
	d.reviews.AssertExpectations(t)
	d.images.AssertExpectations(t)
	d.cache.AssertExpectations(t)
	d.events.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
}

func newTestUsecase() (*ListingUsecase, testDeps) {
	d := testDeps{
		listings: new(MockListingRepository),
		users:    new(MockUserRepository),
		reviews:  new(MockReviewRepository),
		images:   new(MockImageStore),
		cache:    new(MockListingCache),
		events:   new(MockEventPublisher),
		mailer:   new(MockMailer),
	}
	uc := NewListingUsecase(Dependencies{
		Listings: d.listings,
		Users:    d.users,
		Reviews:  d.reviews,
		Images:   d.images,
		Cache:    d.cache,
		Events:   d.events,
		Mailer:   d.mailer,
		CacheTTL: time.Minute,
	}, logger.NewNop())
	return uc, d
}

// newBareUsecase has no cache, events or mailer configured.
func newBareUsecase() (*ListingUsecase, testDeps) {
	uc, d := newTestUsecase()
	uc.cache, uc.events, uc.mailer = nil, nil, nil
	return uc, d
}

func strPtr(s string) *string { return &s }

func TestListingUsecase_Index_ResolvesDisplayURLs(t *testing.T) {
	uc, d := newBareUsecase()
	ctx := context.Background()

	absolute := &domain.Listing{ID: "a", Image: &domain.Image{URL: "https://cdn.example.com/upload/a.jpg", Filename: "wanderlust_DEV/a"}}
	relative := &domain.Listing{ID: "b", Image: &domain.Image{URL: "upload/b.jpg", Filename: "wanderlust_DEV/b"}}
	noURL := &domain.Listing{ID: "c", Image: &domain.Image{Filename: "wanderlust_DEV/c"}}
	bare := &domain.Listing{ID: "d"}
	emptyImage := &domain.Listing{ID: "e", Image: &domain.Image{}}

	d.listings.On("FindAll", mock.Anything).Return([]*domain.Listing{absolute, relative, noURL, bare, emptyImage}, nil).Once()
	d.images.On("URL", "wanderlust_DEV/b", CardTransform).Return("https://img.example.com/upload/w_800,c_fill/wanderlust_DEV/b", nil).Once()
	d.images.On("URL", "wanderlust_DEV/c", CardTransform).Return("https://img.example.com/upload/w_800,c_fill/wanderlust_DEV/c", nil).Once()

	res, err := uc.Index(ctx)

	require.NoError(t, err)
	require.Len(t, res.Cards, 5)
	assert.Equal(t, "https://cdn.example.com/upload/a.jpg", res.Cards[0].ImageURL)
	assert.Equal(t, "https://img.example.com/upload/w_800,c_fill/wanderlust_DEV/b", res.Cards[1].ImageURL)
	assert.Equal(t, "https://img.example.com/upload/w_800,c_fill/wanderlust_DEV/c", res.Cards[2].ImageURL)
	assert.Equal(t, PlaceholderImageURL, res.Cards[3].ImageURL)
	assert.Equal(t, PlaceholderImageURL, res.Cards[4].ImageURL)
	assert.False(t, res.Degraded())

	assert.Equal(t, "upload/b.jpg", relative.Image.URL, "resolution must not be written back")
	d.assertAll(t)
}

func TestListingUsecase_Index_URLBuilderFailure(t *testing.T) {
	uc, d := newBareUsecase()
	ctx := context.Background()

	stale := &domain.Listing{ID: "a", Image: &domain.Image{URL: "stale.jpg", Filename: "wanderlust_DEV/a"}}
	nothing := &domain.Listing{ID: "b", Image: &domain.Image{Filename: "wanderlust_DEV/b"}}
	builderErr := errors.New("bad key")

	d.listings.On("FindAll", mock.Anything).Return([]*domain.Listing{stale, nothing}, nil).Once()
	d.images.On("URL", mock.Anything, CardTransform).Return("", builderErr).Twice()

	res, err := uc.Index(ctx)

	require.NoError(t, err)
	assert.Equal(t, "stale.jpg", res.Cards[0].ImageURL)
	assert.Equal(t, PlaceholderImageURL, res.Cards[1].ImageURL)
	assert.True(t, res.Failed(EffectImageURL))
	assert.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Failures[0], builderErr)
	d.assertAll(t)
}

func TestListingUsecase_Index_StoreError(t *testing.T) {
	uc, d := newBareUsecase()
	d.listings.On("FindAll", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	res, err := uc.Index(context.Background())

	assert.Error(t, err)
	assert.Nil(t, res)
	d.assertAll(t)
}

func TestListingUsecase_Show(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFoundFlashesError", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		d.cache.On("GetDetails", mock.Anything, "missing").Return(nil, nil).Once()
		d.listings.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrListingNotFound).Once()

		res, err := uc.Show(ctx, "missing", n)

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
		assert.Nil(t, res)
		assert.Equal(t, MsgListingNotFound, n.Last(domain.FlashError))
		d.assertAll(t)
	})

	t.Run("PopulatesOwnerAndReviewsInOrder", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		listing := &domain.Listing{ID: "l1", OwnerID: "u1", ReviewIDs: []string{"r2", "r1", "gone"}}
		alice := &domain.User{ID: "u1", Username: "alice"}
		bob := &domain.User{ID: "u2", Username: "bob"}
		r1 := &domain.Review{ID: "r1", Comment: "Amazing stay", Rating: 5, AuthorID: "u2"}
		r2 := &domain.Review{ID: "r2", Comment: "Noisy", Rating: 3, AuthorID: "u1"}

		d.cache.On("GetDetails", mock.Anything, "l1").Return(nil, nil).Once()
		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.users.On("FindByID", mock.Anything, "u1").Return(alice, nil).Once()
		d.reviews.On("FindByIDs", mock.Anything, []string{"r2", "r1", "gone"}).Return([]*domain.Review{r1, r2}, nil).Once()
		d.users.On("FindByIDs", mock.Anything, []string{"u2", "u1"}).Return([]*domain.User{alice, bob}, nil).Once()
		d.cache.On("SetDetails", mock.Anything, mock.AnythingOfType("*domain.ListingDetails"), time.Minute).Return(nil).Once()

		res, err := uc.Show(ctx, "l1", n)

		require.NoError(t, err)
		assert.Empty(t, n.Flashes)
		assert.Same(t, alice, res.Details.Owner)
		require.Len(t, res.Details.Reviews, 2)
		assert.Equal(t, "r2", res.Details.Reviews[0].Review.ID)
		assert.Same(t, alice, res.Details.Reviews[0].Author)
		assert.Equal(t, "r1", res.Details.Reviews[1].Review.ID)
		assert.Same(t, bob, res.Details.Reviews[1].Author)
		d.assertAll(t)
	})

	t.Run("CacheHitSkipsStore", func(t *testing.T) {
		uc, d := newTestUsecase()
		cached := &domain.ListingDetails{Listing: &domain.Listing{ID: "l1"}}
		d.cache.On("GetDetails", mock.Anything, "l1").Return(cached, nil).Once()

		res, err := uc.Show(ctx, "l1", &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Same(t, cached, res.Details)
		d.listings.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		d.assertAll(t)
	})

	t.Run("CacheFailureDegrades", func(t *testing.T) {
		uc, d := newTestUsecase()
		listing := &domain.Listing{ID: "l1"}
		d.cache.On("GetDetails", mock.Anything, "l1").Return(nil, errors.New("redis down")).Once()
		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.cache.On("SetDetails", mock.Anything, mock.Anything, time.Minute).Return(errors.New("redis down")).Once()

		res, err := uc.Show(ctx, "l1", &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Same(t, listing, res.Details.Listing)
		assert.Nil(t, res.Details.Owner)
		assert.Empty(t, res.Details.Reviews)
		assert.True(t, res.Failed(EffectCache))
		assert.Len(t, res.Failures, 2)
		d.assertAll(t)
	})

	t.Run("MissingOwnerIsTolerated", func(t *testing.T) {
		uc, d := newBareUsecase()
		listing := &domain.Listing{ID: "l1", OwnerID: "ghost"}
		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.users.On("FindByID", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound).Once()

		res, err := uc.Show(ctx, "l1", &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Nil(t, res.Details.Owner)
		d.assertAll(t)
	})
}

func TestListingUsecase_Create(t *testing.T) {
	ctx := context.Background()
	input := domain.ListingInput{
		Title:    strPtr("Cozy Lakeside Cabin"),
		Location: strPtr("Lakeview"),
		Country:  strPtr("USA"),
	}
	price := 120.0
	input.Price = &price
	upload := &domain.UploadedImage{URL: "https://img.example.com/upload/wanderlust_DEV/abc", PublicID: "wanderlust_DEV/abc"}

	t.Run("Success", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		owner := &domain.User{ID: "u1", Email: "alice@example.com"}

		d.listings.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.OwnerID == "u1" && l.Title == "Cozy Lakeside Cabin" && l.Price == 120 &&
				l.Image != nil && l.Image.URL == upload.URL && l.Image.Filename == upload.PublicID
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Listing).ID = "new-id"
		}).Return(nil).Once()
		d.events.On("Publish", mock.Anything, SubjectListingCreated, mock.Anything).Return(nil).Once()
		d.users.On("FindByID", mock.Anything, "u1").Return(owner, nil).Once()
		d.mailer.On("SendListingCreated", mock.Anything, "alice@example.com", "Cozy Lakeside Cabin").Return(nil).Once()

		res, err := uc.Create(ctx, "u1", input, upload, n)

		require.NoError(t, err)
		assert.Equal(t, "new-id", res.Listing.ID)
		assert.False(t, res.Degraded())
		assert.Equal(t, MsgListingCreated, n.Last(domain.FlashSuccess))
		d.assertAll(t)
	})

	t.Run("MissingUploadIsFatal", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}

		res, err := uc.Create(ctx, "u1", input, nil, n)

		assert.ErrorIs(t, err, domain.ErrMissingUpload)
		assert.Nil(t, res)
		assert.Empty(t, n.Flashes)
		d.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MailAndEventFailuresDegrade", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}

		d.listings.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		d.events.On("Publish", mock.Anything, SubjectListingCreated, mock.Anything).Return(errors.New("nats closed")).Once()
		d.users.On("FindByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "alice@example.com"}, nil).Once()
		d.mailer.On("SendListingCreated", mock.Anything, "alice@example.com", mock.Anything).Return(errors.New("smtp timeout")).Once()

		res, err := uc.Create(ctx, "u1", input, upload, n)

		require.NoError(t, err)
		assert.True(t, res.Failed(EffectEvent))
		assert.True(t, res.Failed(EffectMail))
		assert.Equal(t, MsgListingCreated, n.Last(domain.FlashSuccess))
		d.assertAll(t)
	})

	t.Run("StoreErrorPropagates", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		d.listings.On("Create", mock.Anything, mock.Anything).Return(errors.New("write conflict")).Once()

		res, err := uc.Create(ctx, "u1", input, upload, n)

		assert.Error(t, err)
		assert.Nil(t, res)
		assert.Empty(t, n.Flashes)
		d.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		d.assertAll(t)
	})
}

func TestListingUsecase_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("Thumbnail", func(t *testing.T) {
		uc, d := newBareUsecase()
		listing := &domain.Listing{
			ID:        "l1",
			Image:     &domain.Image{URL: "https://img.example.com/upload/wanderlust_DEV/abc", Filename: "wanderlust_DEV/abc"},
			ReviewIDs: []string{"r1"},
		}
		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.reviews.On("FindByIDs", mock.Anything, []string{"r1"}).Return([]*domain.Review{{ID: "r1"}}, nil).Once()

		res, err := uc.Edit(ctx, "l1", &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/upload/w_250/wanderlust_DEV/abc", res.ThumbnailURL)
		assert.Len(t, res.Reviews, 1)
		d.users.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
		d.assertAll(t)
	})

	t.Run("NoImage", func(t *testing.T) {
		uc, d := newBareUsecase()
		d.listings.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil).Once()

		res, err := uc.Edit(ctx, "l1", &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Empty(t, res.ThumbnailURL)
		d.assertAll(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc, d := newBareUsecase()
		n := &domain.FlashRecorder{}
		d.listings.On("FindByID", mock.Anything, "nope").Return(nil, domain.ErrListingNotFound).Once()

		_, err := uc.Edit(ctx, "nope", n)

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
		assert.Equal(t, MsgListingNotFound, n.Last(domain.FlashError))
		d.assertAll(t)
	})
}

func TestListingUsecase_Update(t *testing.T) {
	ctx := context.Background()
	upload := &domain.UploadedImage{URL: "https://img.example.com/upload/wanderlust_DEV/new", PublicID: "wanderlust_DEV/new"}

	existing := func() *domain.Listing {
		return &domain.Listing{
			ID:      "l1",
			Title:   "Old title",
			Country: "USA",
			Image:   &domain.Image{URL: "https://img.example.com/upload/wanderlust_DEV/old", Filename: "wanderlust_DEV/old"},
		}
	}

	t.Run("ReplacesImageWhenDestroyFails", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		listing := existing()

		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.images.On("Destroy", mock.Anything, "wanderlust_DEV/old").Return(errors.New("host unavailable")).Once()
		d.listings.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.Image.URL == upload.URL && l.Image.Filename == upload.PublicID && l.Title == "New title"
		})).Return(nil).Once()
		d.cache.On("Delete", mock.Anything, "l1").Return(nil).Once()
		d.events.On("Publish", mock.Anything, SubjectListingUpdated, mock.Anything).Return(nil).Once()

		res, err := uc.Update(ctx, "l1", domain.ListingInput{Title: strPtr("New title")}, upload, n)

		require.NoError(t, err)
		assert.Equal(t, upload.URL, res.Listing.Image.URL)
		assert.Equal(t, upload.PublicID, res.Listing.Image.Filename)
		assert.Equal(t, "USA", res.Listing.Country)
		assert.True(t, res.Failed(EffectImageDestroy))
		assert.Equal(t, MsgListingUpdated, n.Last(domain.FlashSuccess))
		d.assertAll(t)
	})

	t.Run("KeepsImageWithoutUpload", func(t *testing.T) {
		uc, d := newBareUsecase()
		listing := existing()

		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.listings.On("Update", mock.Anything, listing).Return(nil).Once()

		res, err := uc.Update(ctx, "l1", domain.ListingInput{Country: strPtr("Canada")}, nil, &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Equal(t, "wanderlust_DEV/old", res.Listing.Image.Filename)
		assert.Equal(t, "Canada", res.Listing.Country)
		d.images.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
		d.assertAll(t)
	})

	t.Run("NoPreviousAssetSkipsDestroy", func(t *testing.T) {
		uc, d := newBareUsecase()
		listing := &domain.Listing{ID: "l1"}

		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.listings.On("Update", mock.Anything, listing).Return(nil).Once()

		res, err := uc.Update(ctx, "l1", domain.ListingInput{}, upload, &domain.FlashRecorder{})

		require.NoError(t, err)
		assert.Equal(t, upload.PublicID, res.Listing.Image.Filename)
		d.images.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
		d.assertAll(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		d.listings.On("FindByID", mock.Anything, "gone").Return(nil, domain.ErrListingNotFound).Once()

		_, err := uc.Update(ctx, "gone", domain.ListingInput{}, upload, n)

		assert.ErrorIs(t, err, domain.ErrListingNotFound)
		assert.Equal(t, MsgListingNotFound, n.Last(domain.FlashError))
		d.assertAll(t)
	})
}

func TestListingUsecase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesRecordWhenDestroyFails", func(t *testing.T) {
		uc, d := newTestUsecase()
		n := &domain.FlashRecorder{}
		listing := &domain.Listing{ID: "l1", Image: &domain.Image{URL: "https://x/upload/a", Filename: "wanderlust_DEV/a"}}

		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.images.On("Destroy", mock.Anything, "wanderlust_DEV/a").Return(errors.New("host unavailable")).Once()
		d.listings.On("FindByIDAndDelete", mock.Anything, "l1").Return(listing, nil).Once()
		d.cache.On("Delete", mock.Anything, "l1").Return(nil).Once()
		d.events.On("Publish", mock.Anything, SubjectListingDeleted, mock.Anything).Return(nil).Once()

		res, err := uc.Delete(ctx, "l1", n)

		require.NoError(t, err)
		assert.True(t, res.Deleted)
		assert.True(t, res.Failed(EffectImageDestroy))
		assert.Equal(t, MsgListingDeleted, n.Last(domain.FlashSuccess))
		d.assertAll(t)
	})

	t.Run("UnknownIDStillSucceeds", func(t *testing.T) {
		uc, d := newBareUsecase()
		n := &domain.FlashRecorder{}

		d.listings.On("FindByID", mock.Anything, "gone").Return(nil, domain.ErrListingNotFound).Once()
		d.listings.On("FindByIDAndDelete", mock.Anything, "gone").Return(nil, nil).Once()

		res, err := uc.Delete(ctx, "gone", n)

		require.NoError(t, err)
		assert.False(t, res.Deleted)
		assert.Equal(t, MsgListingDeleted, n.Last(domain.FlashSuccess))
		d.images.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
		d.assertAll(t)
	})

	t.Run("DeleteErrorPropagates", func(t *testing.T) {
		uc, d := newBareUsecase()
		n := &domain.FlashRecorder{}
		listing := &domain.Listing{ID: "l1"}

		d.listings.On("FindByID", mock.Anything, "l1").Return(listing, nil).Once()
		d.listings.On("FindByIDAndDelete", mock.Anything, "l1").Return(nil, errors.New("timeout")).Once()

		res, err := uc.Delete(ctx, "l1", n)

		assert.Error(t, err)
		assert.Nil(t, res)
		assert.Empty(t, n.Flashes)
		d.assertAll(t)
	})
}
