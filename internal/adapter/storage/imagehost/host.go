// Package imagehost implements domain.ImageStore on top of an object bucket
// and a transforming delivery URL scheme.
package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedMedia = errors.New("image host: unsupported media type")
	ErrTooLarge         = errors.New("image host: image exceeds size limit")
)

// ObjectStore is the bucket an image host writes to.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, key string) error
	// BaseURL is the public URL of the bucket root.
	BaseURL() string
}

type Options struct {
	// DeliveryURL overrides the bucket's BaseURL for generated links.
	DeliveryURL string
	MaxBytes    int64
	HTTPClient  *http.Client
}

// Host implements domain.ImageStore.
type Host struct {
	objects  ObjectStore
	urls     *URLBuilder
	maxBytes int64
	http     *http.Client
	logger   *logger.Logger
}

func New(objects ObjectStore, opts Options, log *logger.Logger) (*Host, error) {
	base := opts.DeliveryURL
	if base == "" {
		base = objects.BaseURL()
	}
	urls, err := NewURLBuilder(base)
	if err != nil {
		return nil, err
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Host{
		objects:  objects,
		urls:     urls,
		maxBytes: maxBytes,
		http:     client,
		logger:   log.Named("ImageHost"),
	}, nil
}

// NewPublicID returns a fresh key inside folder.
func NewPublicID(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return uuid.NewString()
	}
	return folder + "/" + uuid.NewString()
}

// Upload fetches source, a http(s) URL or a local file path, and stores it.
func (h *Host) Upload(ctx context.Context, source, folder string) (*domain.UploadedImage, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, contentType, err = h.fetch(ctx, source)
	} else {
		data, err = h.readFile(source)
		contentType = mime.TypeByExtension(filepath.Ext(source))
	}
	if err != nil {
		h.logger.Warn("Failed to read image source", zap.String("source", source), zap.Error(err))
		return nil, err
	}
	return h.store(ctx, data, contentType, folder)
}

// Put stores size bytes read from r. A negative size means unknown.
func (h *Host) Put(ctx context.Context, r io.Reader, size int64, filename, contentType, folder string) (*domain.UploadedImage, error) {
	if size > h.maxBytes {
		return nil, ErrTooLarge
	}
	data, err := h.readLimited(r)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(filename))
	}
	return h.store(ctx, data, contentType, folder)
}

func (h *Host) Destroy(ctx context.Context, publicID string) error {
	if err := ValidatePublicID(publicID); err != nil {
		return err
	}
	if err := h.objects.RemoveObject(ctx, ObjectKey(publicID)); err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	h.logger.Info("Image destroyed", zap.String("public_id", publicID))
	return nil
}

func (h *Host) URL(publicID string, t domain.Transform) (string, error) {
	return h.urls.Build(publicID, t)
}

func (h *Host) store(ctx context.Context, data []byte, contentType, folder string) (*domain.UploadedImage, error) {
	contentType = resolveContentType(data, contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	publicID := NewPublicID(folder)
	if err := ValidatePublicID(publicID); err != nil {
		return nil, err
	}
	if err := h.objects.PutObject(ctx, ObjectKey(publicID), bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("store %s: %w", publicID, err)
	}

	url, err := h.urls.Build(publicID, domain.Transform{})
	if err != nil {
		return nil, err
	}
	h.logger.Info("Image stored",
		zap.String("public_id", publicID),
		zap.String("content_type", contentType),
		zap.Int("size_bytes", len(data)))
	return &domain.UploadedImage{URL: url, PublicID: publicID}, nil
}

// resolveContentType sniffs the payload when the declared type is missing
// or generic.
func resolveContentType(data []byte, declared string) string {
	declared = strings.TrimSpace(declared)
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "" || declared == "application/octet-stream" || declared == "binary/octet-stream" {
		return http.DetectContentType(data)
	}
	return declared
}

func (h *Host) fetch(ctx context.Context, source string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}
	if resp.ContentLength > h.maxBytes {
		return nil, "", ErrTooLarge
	}
	data, err := h.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (h *Host) readFile(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return h.readLimited(f)
}

func (h *Host) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
