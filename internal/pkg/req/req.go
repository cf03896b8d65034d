/*
Package req binds request bodies (JSON or URL-encoded forms) into handler inputs.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"skillswap/internal/pkg/errs"
)

// MaxFormBytes caps the size of any bound request body.
const MaxFormBytes int64 = 64 << 10 // 64 KB

// BindJSON decodes a single JSON document from the body into dst, rejecting unknown fields.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxFormBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// FormValues parses a URL-encoded or JSON body and returns the requested fields untrimmed.
// JSON bodies must be a flat object of strings.
func FormValues(w http.ResponseWriter, r *http.Request, fields ...string) (map[string]string, *errs.CustomError) {
	values := make(map[string]string, len(fields))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		if customErr := BindJSON(r, &body); customErr != nil {
			return nil, customErr
		}
		for _, f := range fields {
			values[f] = body[f]
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, errs.NewError(errs.ErrFormParseFailed)
	}

	for _, f := range fields {
		values[f] = r.PostForm.Get(f)
	}
	return values, nil
}
