package usecase

import (
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
)

// PlaceholderImageURL is shown for listings without a usable image.
const PlaceholderImageURL = "https://via.placeholder.com/600x400?text=No+Image"

// CardTransform is applied when a card URL has to be rebuilt from the filename.
var CardTransform = domain.Transform{Width: 800, Crop: "fill"}

const thumbnailToken = "/upload/w_250"

// isAbsoluteHTTPURL reports whether raw is an http(s) URL with a host.
func isAbsoluteHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ResolveDisplayURL picks the URL a listing card should show. A non-nil error
// means the URL builder failed and a fallback was used; the returned URL is
// always usable.
func ResolveDisplayURL(img *domain.Image, images domain.ImageStore) (string, error) {
	var stored, filename string
	if img != nil {
		stored, filename = img.URL, img.Filename
	}

	if isAbsoluteHTTPURL(stored) {
		return stored, nil
	}

	if filename != "" {
		built, err := images.URL(filename, CardTransform)
		if err == nil && built != "" {
			return built, nil
		}
		if stored != "" {
			return stored, err
		}
		return PlaceholderImageURL, err
	}

	return PlaceholderImageURL, nil
}

// ThumbnailURL rewrites the first /upload path segment of a delivery URL to
// request a 250px wide variant.
func ThumbnailURL(stored string) string {
	return strings.Replace(stored, "/upload", thumbnailToken, 1)
}
