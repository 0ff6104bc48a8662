// Package blobs uploads generated images to the configured blob store and
// hands back their public URLs.
package blobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// 6MB.
const maxSize = 6291456

// Service defines the interface for blob operations
type Service interface {
	// UploadImage stores data under a key derived from userID and returns
	// the publicly resolvable URL.
	UploadImage(ctx context.Context, userID string, data []byte, mimeType string) (string, error)
}

type blobService struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new blob service pointed at baseURL.
func NewService(baseURL string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &blobService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
}

// UploadImage uploads binary data to the blob store.
// Flow:
// 1. Validate inputs (non-empty data, supported MIME type, max 6MB)
// 2. PUT to {baseURL}/{key} with key images/<userID>_<unixmilli>.<ext>
// 3. Parse response and extract the public URL
func (s *blobService) UploadImage(ctx context.Context, userID string, data []byte, mimeType string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID cannot be empty")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("data cannot be empty")
	}

	mimeType = normalizeMimeType(mimeType)
	if !isValidMimeType(mimeType) {
		return "", fmt.Errorf("unsupported MIME type: %s (allowed: image/jpeg, image/png, image/webp)", mimeType)
	}
	if len(data) > maxSize {
		return "", fmt.Errorf("data size %d bytes exceeds maximum of %d bytes (6MB)", len(data), maxSize)
	}
	if s.baseURL == "" {
		return "", fmt.Errorf("blob store URL is not configured")
	}

	key := fmt.Sprintf("images/%s_%d.%s", userID, s.now().UnixMilli(), extension(mimeType))
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create blob request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("failed to close blob response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read blob response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "... (truncated)"
		}
		s.logger.Error("blob store rejected upload", "status", resp.StatusCode, "body", preview)
		return "", fmt.Errorf("blob store returned HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse blob response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("blob response missing url")
	}
	return parsed.URL, nil
}

// normalizeMimeType maps common aliases onto canonical names.
func normalizeMimeType(mimeType string) string {
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}

func isValidMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
