// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-elect/apperr"
	"github.com/danielhkuo/quickly-elect/imagestore"
	"github.com/danielhkuo/quickly-elect/middleware"
)

// Room for the other form fields on top of the photo itself
const formOverhead = 1 << 20

// parseForm reads a multipart (or urlencoded) form, capping the body size.
// It writes the error response itself and returns false on failure.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, imagestore.MaxUploadSize+formOverhead)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(imagestore.MaxUploadSize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "photo must be 16 MiB or smaller")
			return false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return false
	}
	return true
}

// uploadPhoto stores the optional "photo" form file and returns its URL,
// or nil when no photo was sent.
func uploadPhoto(ctx context.Context, r *http.Request, images imagestore.Store, folder string) (*string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "invalid photo upload")
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}
	if !imagestore.Allowed(header.Filename) {
		return nil, apperr.Wrap(apperr.KindInvalidInput, imagestore.ErrUnsupportedType, "photo must be png, jpg, jpeg, gif or bmp")
	}

	url, err := images.Upload(ctx, folder, header.Filename, file)
	if errors.Is(err, imagestore.ErrNotConfigured) {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "photo uploads are not enabled on this server")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}
	return &url, nil
}

// deletePhotos removes images that belonged to deleted records. Failures
// are logged; the records are already gone.
func deletePhotos(ctx context.Context, images imagestore.Store, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := images.Delete(ctx, url); err != nil {
			slog.Warn("failed to delete photo", "url", url, "error", err)
		}
	}
}
