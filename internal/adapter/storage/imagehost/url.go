package imagehost

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
)

// uploadSegment prefixes every object key and delivery path.
const uploadSegment = "upload"

var publicIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+(/[A-Za-z0-9_.\-]+)*$`)

var cropModes = map[string]bool{
	"fill":  true,
	"fit":   true,
	"scale": true,
	"thumb": true,
	"limit": true,
}

// URLBuilder renders delivery URLs of the form
// <base>/upload[/w_<width>,c_<crop>]/<publicID>.
type URLBuilder struct {
	base string
}

func NewURLBuilder(base string) (*URLBuilder, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("delivery base %q must be an absolute http(s) URL", base)
	}
	return &URLBuilder{base: base}, nil
}

// ValidatePublicID rejects keys that could escape the upload prefix.
func ValidatePublicID(publicID string) error {
	if !publicIDPattern.MatchString(publicID) || strings.Contains(publicID, "..") {
		return fmt.Errorf("%w: %q", domain.ErrInvalidImageKey, publicID)
	}
	return nil
}

// ObjectKey is the bucket key an asset is stored under.
func ObjectKey(publicID string) string {
	return uploadSegment + "/" + publicID
}

// TransformToken renders t as a path segment, or "" for the original asset.
func TransformToken(t domain.Transform) (string, error) {
	if t.Width < 0 {
		return "", fmt.Errorf("%w: negative width %d", domain.ErrInvalidTransform, t.Width)
	}
	if t.Crop != "" && !cropModes[t.Crop] {
		return "", fmt.Errorf("%w: unknown crop mode %q", domain.ErrInvalidTransform, t.Crop)
	}

	parts := make([]string, 0, 2)
	if t.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(t.Width))
	}
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	return strings.Join(parts, ","), nil
}

func (b *URLBuilder) Build(publicID string, t domain.Transform) (string, error) {
	if err := ValidatePublicID(publicID); err != nil {
		return "", err
	}
	token, err := TransformToken(t)
	if err != nil {
		return "", err
	}
	if token == "" {
		return b.base + "/" + uploadSegment + "/" + publicID, nil
	}
	return b.base + "/" + uploadSegment + "/" + token + "/" + publicID, nil
}
