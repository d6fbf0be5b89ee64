// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// MaxUploadSize caps a single photo upload
const MaxUploadSize = 16 << 20

// Folders photos are filed under
const (
	FolderCandidates = "candidates"
	FolderVoters     = "voters"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type (allowed: png, jpg, jpeg, gif, bmp)")
	ErrNotConfigured   = errors.New("image store not configured")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// Allowed reports whether filename has a permitted image extension
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store uploads photos and returns their public URL.
type Store interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// HTTPStore talks to an image host that accepts multipart uploads at its
// base URL and answers {"secure_url": "..."}. Deletes are DELETE requests
// with the image URL as a query parameter.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (h *HTTPStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if !Allowed(filename) {
		return "", ErrUnsupportedType
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("write folder field: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("upload image: unexpected status %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", errors.New("upload response missing secure_url")
	}
	return out.SecureURL, nil
}

func (h *HTTPStore) Delete(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"?url="+url.QueryEscape(imageURL), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete image: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (h *HTTPStore) authorize(req *http.Request) {
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
}

// Noop is used when no image host is configured. Uploads fail so the
// caller can report it; deletes succeed.
type Noop struct{}

func (Noop) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}

func (Noop) Delete(context.Context, string) error { return nil }
