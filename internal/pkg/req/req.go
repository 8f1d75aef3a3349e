/*
Package req binds request bodies for the HTTP handlers.

JSON bodies are decoded strictly (unknown fields and trailing data are rejected) and
multipart bodies are size-capped before parsing; every failure is reported as an
errs.CustomError ready to be sent back with resp.RespondError.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"phonebook/internal/pkg/errs"
)

const (
	// MaxJSONBody caps JSON request bodies.
	MaxJSONBody int64 = 64 << 10 // 64 KB

	// MaxFormMemory is the part of a multipart body kept in memory; the rest spills to disk.
	MaxFormMemory int64 = 8 << 20 // 8 MB

	// MaxRequestFileSize caps the whole multipart body, file included.
	MaxRequestFileSize int64 = 6 << 20 // 6 MB
)

// BindJSON decodes the JSON body of r into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart caps and parses a multipart/form-data body.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
