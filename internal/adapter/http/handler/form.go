package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
)

// Form field names submitted by the listing forms.
const (
	fieldTitle       = "listing[title]"
	fieldDescription = "listing[description]"
	fieldPrice       = "listing[price]"
	fieldLocation    = "listing[location]"
	fieldCountry     = "listing[country]"
	fieldImage       = "listing[image]"
)

const multipartMemory = 32 << 20

var errBadPrice = errors.New("price must be a non-negative number")

// parseForm reads a urlencoded or multipart body. It is safe to call after
// the body was already parsed.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return err
		}
		return nil
	}
	return r.ParseForm()
}

func optional(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(values.Get(key))
	return &v
}

// listingInputFromForm collects the submitted listing fields. Absent fields
// stay nil.
func listingInputFromForm(values url.Values) (domain.ListingInput, error) {
	in := domain.ListingInput{
		Title:       optional(values, fieldTitle),
		Description: optional(values, fieldDescription),
		Location:    optional(values, fieldLocation),
		Country:     optional(values, fieldCountry),
	}
	if raw := optional(values, fieldPrice); raw != nil {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil || price < 0 {
			return in, fmt.Errorf("%w: %q", errBadPrice, *raw)
		}
		in.Price = &price
	}
	return in, nil
}

// imageFile returns the uploaded image part, or nil when none was sent.
func imageFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := r.FormFile(fieldImage)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return f, h, nil
}
