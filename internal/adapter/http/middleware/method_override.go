package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is the form field HTML forms use to send PUT and DELETE.
const MethodOverrideField = "_method"

const multipartMemory = 32 << 20

// MethodOverride rewrites POST requests carrying _method=PUT|PATCH|DELETE,
// either as a query parameter or a form field.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.URL.Query().Get(MethodOverrideField)
			if override == "" {
				override = formOverride(r)
			}
			switch m := strings.ToUpper(override); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func formOverride(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.PostForm.Get(MethodOverrideField)
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return ""
		}
		return r.PostFormValue(MethodOverrideField)
	}
	return ""
}
