package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/storage/imagehost"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const listingsPath = "/listings"

// ListingService is the listing lifecycle the handler drives.
type ListingService interface {
	Index(ctx context.Context) (*usecase.IndexResult, error)
	Show(ctx context.Context, id string, n domain.Notifier) (*usecase.ShowResult, error)
	Create(ctx context.Context, ownerID string, input domain.ListingInput, upload *domain.UploadedImage, n domain.Notifier) (*usecase.CreateResult, error)
	Edit(ctx context.Context, id string, n domain.Notifier) (*usecase.EditResult, error)
	Update(ctx context.Context, id string, input domain.ListingInput, upload *domain.UploadedImage, n domain.Notifier) (*usecase.UpdateResult, error)
	Delete(ctx context.Context, id string, n domain.Notifier) (*usecase.DeleteResult, error)
}

type ListingHandler struct {
	listings    ListingService
	images      domain.ImageStore
	imageFolder string
	flashes     FlashStore
	render      Renderer
	metrics     *metrics.MetricsManager
	logger      *logger.Logger
}

// NewListingHandler builds the handler. mm may be nil.
func NewListingHandler(listings ListingService, images domain.ImageStore, imageFolder string, flashes FlashStore, render Renderer, mm *metrics.MetricsManager, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listings:    listings,
		images:      images,
		imageFolder: imageFolder,
		flashes:     flashes,
		render:      render,
		metrics:     mm,
		logger:      log.Named("ListingHandler"),
	}
}

func (h *ListingHandler) notifier(r *http.Request) domain.Notifier {
	return &sessionNotifier{
		ctx:       r.Context(),
		store:     h.flashes,
		sessionID: middleware.SessionIDFromContext(r.Context()),
		logger:    h.logger,
	}
}

func (h *ListingHandler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func (h *ListingHandler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("Listing operation failed", zap.String("op", op), zap.String("path", r.URL.Path), zap.Error(err))
	h.render.Render(w, r, http.StatusInternalServerError, "error", map[string]string{"error": "Something went wrong"})
}

func (h *ListingHandler) badRequest(w http.ResponseWriter, r *http.Request, view string, err error) {
	h.logger.Warn("Rejected listing request", zap.String("path", r.URL.Path), zap.Error(err))
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, imagehost.ErrTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	h.render.Render(w, r, status, view, map[string]string{"error": err.Error()})
}

// uploadFailed answers 400/413 for rejected images and 502 when the image
// host itself failed.
func (h *ListingHandler) uploadFailed(w http.ResponseWriter, r *http.Request, view string, err error) {
	var hostErr *imageHostError
	if !errors.As(err, &hostErr) || errors.Is(err, imagehost.ErrUnsupportedMedia) || errors.Is(err, imagehost.ErrTooLarge) {
		h.badRequest(w, r, view, err)
		return
	}
	h.logger.Error("Image upload failed", zap.String("path", r.URL.Path), zap.Error(err))
	if h.metrics != nil {
		h.metrics.SideEffectErrorsTotal.WithLabelValues(string(usecase.EffectImageUpload)).Inc()
	}
	h.render.Render(w, r, http.StatusBadGateway, view, map[string]string{"error": "Image upload failed, please try again"})
}

func (h *ListingHandler) observe(o usecase.Outcome) {
	if h.metrics == nil {
		return
	}
	for _, f := range o.Failures {
		h.metrics.SideEffectErrorsTotal.WithLabelValues(string(f.Effect)).Inc()
	}
}

// Index handles GET /listings.
func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request) {
	res, err := h.listings.Index(r.Context())
	if err != nil {
		h.serverError(w, r, "index", err)
		return
	}
	h.observe(res.Outcome)
	h.render.Render(w, r, http.StatusOK, "listings/index", map[string]interface{}{
		"listings": toCardViews(res.Cards),
	})
}

// New handles GET /listings/new.
func (h *ListingHandler) New(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "listings/new", nil)
}

// Show handles GET /listings/{id}.
func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.listings.Show(r.Context(), id, h.notifier(r))
	if errors.Is(err, domain.ErrListingNotFound) {
		h.redirect(w, r, listingsPath)
		return
	}
	if err != nil {
		h.serverError(w, r, "show", err)
		return
	}
	h.observe(res.Outcome)
	h.render.Render(w, r, http.StatusOK, "listings/show",
		toShowView(res.Details, middleware.UserIDFromContext(r.Context())))
}

// Create handles POST /listings.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.badRequest(w, r, "listings/new", err)
		return
	}
	input, err := listingInputFromForm(r.PostForm)
	if err != nil {
		h.badRequest(w, r, "listings/new", err)
		return
	}
	upload, err := h.storeUpload(r)
	if err != nil {
		h.uploadFailed(w, r, "listings/new", err)
		return
	}
	if upload == nil {
		h.badRequest(w, r, "listings/new", domain.ErrMissingUpload)
		return
	}

	res, err := h.listings.Create(r.Context(), middleware.UserIDFromContext(r.Context()), input, upload, h.notifier(r))
	if err != nil {
		h.discardUpload(r.Context(), upload)
		h.serverError(w, r, "create", err)
		return
	}
	h.observe(res.Outcome)
	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	h.redirect(w, r, listingsPath)
}

// Edit handles GET /listings/{id}/edit.
func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.listings.Edit(r.Context(), id, h.notifier(r))
	if errors.Is(err, domain.ErrListingNotFound) {
		h.redirect(w, r, listingsPath)
		return
	}
	if err != nil {
		h.serverError(w, r, "edit", err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "listings/edit", editView{
		Listing:      toListingView(res.Listing),
		Reviews:      toReviewViews(res.Reviews),
		ThumbnailURL: res.ThumbnailURL,
	})
}

// Update handles PUT /listings/{id}.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := parseForm(r); err != nil {
		h.badRequest(w, r, "listings/edit", err)
		return
	}
	input, err := listingInputFromForm(r.PostForm)
	if err != nil {
		h.badRequest(w, r, "listings/edit", err)
		return
	}
	upload, err := h.storeUpload(r)
	if err != nil {
		h.uploadFailed(w, r, "listings/edit", err)
		return
	}

	res, err := h.listings.Update(r.Context(), id, input, upload, h.notifier(r))
	if err != nil {
		h.discardUpload(r.Context(), upload)
		if errors.Is(err, domain.ErrListingNotFound) {
			h.redirect(w, r, listingsPath)
			return
		}
		h.serverError(w, r, "update", err)
		return
	}
	h.observe(res.Outcome)
	if h.metrics != nil {
		h.metrics.ListingsUpdatedTotal.Inc()
	}
	h.redirect(w, r, listingsPath+"/"+id)
}

// Delete handles DELETE /listings/{id}.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.listings.Delete(r.Context(), id, h.notifier(r))
	if err != nil {
		h.serverError(w, r, "delete", err)
		return
	}
	h.observe(res.Outcome)
	if h.metrics != nil && res.Deleted {
		h.metrics.ListingsDeletedTotal.Inc()
	}
	h.redirect(w, r, listingsPath)
}

// storeUpload sends the submitted image to the image host. It returns nil
// when the request carried no image.
func (h *ListingHandler) storeUpload(r *http.Request) (*domain.UploadedImage, error) {
	file, header, err := imageFile(r)
	if err != nil || file == nil {
		return nil, err
	}
	defer file.Close()

	upload, err := h.images.Put(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"), h.imageFolder)
	if err != nil {
		return nil, &imageHostError{err: err}
	}
	h.logger.Info("Image uploaded", zap.String("public_id", upload.PublicID))
	return upload, nil
}

type imageHostError struct{ err error }

func (e *imageHostError) Error() string { return "image host: " + e.err.Error() }
func (e *imageHostError) Unwrap() error { return e.err }

// discardUpload removes an image stored for a request that then failed.
func (h *ListingHandler) discardUpload(ctx context.Context, upload *domain.UploadedImage) {
	if upload == nil {
		return
	}
	if err := h.images.Destroy(ctx, upload.PublicID); err != nil {
		h.logger.Warn("Failed to discard orphaned upload", zap.String("public_id", upload.PublicID), zap.Error(err))
	}
}
