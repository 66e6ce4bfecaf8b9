// Package formutil decodes request bodies for the JSON API.
//
// Every failure is returned as an apierr Validation error so handlers can
// pass it straight to apierr.Write.
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/limits"
)

// DecodeJSON reads one JSON value from r's body into v. Bodies larger than
// limits.MaxJSONBody are rejected. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apierr.New(apierr.Validation, "Request body is empty")
		case errors.As(err, &tooBig):
			return apierr.New(apierr.Validation, "Request body too large")
		default:
			return apierr.Wrap(apierr.Validation, "Invalid JSON body", err)
		}
	}
	return nil
}

// Files parses a multipart body and returns the parts uploaded under field.
// The whole request is capped at limits.MaxImageUpload.
func Files(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxImageUpload)
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apierr.New(apierr.Validation, "Upload too large")
		}
		return nil, apierr.Wrap(apierr.Validation, "Invalid multipart body", err)
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, apierr.New(apierr.Validation, "No images uploaded")
	}
	if len(files) > limits.MaxImagesPerUpload {
		return nil, apierr.Validationf("At most %d images per upload", limits.MaxImagesPerUpload)
	}
	return files, nil
}
