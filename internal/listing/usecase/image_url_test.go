package usecase

import (
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsAbsoluteHTTPURL(t *testing.T) {
	cases := map[string]bool{
		"https://res.example.com/a.jpg": true,
		"http://localhost:9000/b/c":     true,
		"ftp://example.com/a.jpg":       false,
		"//example.com/a.jpg":           false,
		"upload/a.jpg":                  false,
		"https://":                      false,
		"":                              false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, isAbsoluteHTTPURL(raw), raw)
	}
}

func TestResolveDisplayURL_EmptyBuilderResult(t *testing.T) {
	images := new(MockImageStore)
	images.On("URL", "k", CardTransform).Return("", nil).Once()

	got, err := ResolveDisplayURL(&domain.Image{Filename: "k"}, images)

	assert.NoError(t, err)
	assert.Equal(t, PlaceholderImageURL, got)
	images.AssertExpectations(t)
}

func TestResolveDisplayURL_BuilderErrorKeepsStored(t *testing.T) {
	images := new(MockImageStore)
	images.On("URL", "k", CardTransform).Return("", errors.New("boom")).Once()

	got, err := ResolveDisplayURL(&domain.Image{URL: "/local/k.jpg", Filename: "k"}, images)

	assert.Error(t, err)
	assert.Equal(t, "/local/k.jpg", got)
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t,
		"https://img.example.com/upload/w_250/wanderlust_DEV/a",
		ThumbnailURL("https://img.example.com/upload/wanderlust_DEV/a"))
	assert.Equal(t,
		"https://img.example.com/upload/w_250/x/upload/y",
		ThumbnailURL("https://img.example.com/upload/x/upload/y"))
	assert.Equal(t, "https://img.example.com/plain.jpg", ThumbnailURL("https://img.example.com/plain.jpg"))
	assert.Empty(t, ThumbnailURL(""))
}
