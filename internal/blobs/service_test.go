package blobs_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/blobs"
)

func TestUploadImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/images/user-1_1700000000000.png", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.True(t, bytes.Equal(payload, body))
		fmt.Fprintf(w, `{"url":"https://cdn.example.com%s"}`, r.URL.Path)
	}))
	defer srv.Close()

	svc := blobs.NewService(srv.URL, nil)
	blobs.SetClock(svc, func() time.Time { return time.UnixMilli(1700000000000) })

	url, err := svc.UploadImage(context.Background(), "user-1", payload, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/user-1_1700000000000.png", url)
}

func TestUploadImageNormalizesJpg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		fmt.Fprintf(w, `{"url":"https://cdn.example.com%s"}`, r.URL.Path)
	}))
	defer srv.Close()

	svc := blobs.NewService(srv.URL, nil)
	blobs.SetClock(svc, func() time.Time { return time.UnixMilli(42) })

	url, err := svc.UploadImage(context.Background(), "user-1", []byte{1}, "image/jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "images/user-1_42.jpg")
}

func TestUploadImageValidation(t *testing.T) {
	svc := blobs.NewService("http://unused.invalid", nil)
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, "", []byte{1}, "image/png")
	assert.Error(t, err)

	_, err = svc.UploadImage(ctx, "user-1", nil, "image/png")
	assert.Error(t, err)

	_, err = svc.UploadImage(ctx, "user-1", []byte{1}, "image/gif")
	assert.ErrorContains(t, err, "unsupported MIME type")

	_, err = svc.UploadImage(ctx, "user-1", make([]byte, 6291457), "image/png")
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestUploadImageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	svc := blobs.NewService(srv.URL, nil)
	_, err := svc.UploadImage(context.Background(), "user-1", []byte{1}, "image/png")
	assert.ErrorContains(t, err, "HTTP 507")
}
