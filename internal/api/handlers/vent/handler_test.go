package vent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/api/middleware"
	"Vented/internal/api/routes"
	"Vented/internal/core/comments"
	"Vented/internal/core/posts"
	"Vented/internal/core/reactions"
	"Vented/internal/store/memstore"
)

// newRouter wires the vent routes over a fresh in-memory store with a
// stub identity middleware.
func newRouter(t *testing.T, ms *memstore.Memstore) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userID := req.Header.Get("X-Test-User")
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	routes.RegisterVentRoutes(r, posts.NewService(ms, nil), comments.NewService(ms, nil), reactions.NewService(ms, nil))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, user, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Test-User", user)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestCreateVent(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	rec, body := doJSON(t, r, "POST", "/vents", "user-1",
		`{"content":"rough day","mood":"😢 Sad","tags":["work"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", body["authorId"])
	assert.Equal(t, "rough day", body["content"])
	assert.Equal(t, "😢 Sad", body["mood"])
	assert.Equal(t, float64(0), body["commentCount"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateVentRejectsBlankContentAndUnknownMood(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	rec, _ := doJSON(t, r, "POST", "/vents", "user-1", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doJSON(t, r, "POST", "/vents", "user-1", `{"content":"hi","mood":"ecstatic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidRequest", body["error"])
}

func TestEditVentOwnership(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	_, created := doJSON(t, r, "POST", "/vents", "author", `{"content":"v1"}`)
	id := created["id"].(string)

	rec, _ := doJSON(t, r, "PATCH", "/vents/"+id, "someone-else", `{"content":"v2"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, r, "PATCH", "/vents/"+id, "author", `{"content":"v2"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	post, err := posts.NewService(ms, nil).GetPost(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "v2", post.Content)
	assert.NotNil(t, post.EditedAt)
}

func TestDeleteAndReportVent(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	_, created := doJSON(t, r, "POST", "/vents", "author", `{"content":"going"}`)
	id := created["id"].(string)

	rec, _ := doJSON(t, r, "POST", "/vents/"+id+"/report", "anyone", ``)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, r, "DELETE", "/vents/"+id, "author", ``)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, r, "GET", "/vents/"+id, "anyone", ``)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVentNotFound(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	rec, body := doJSON(t, r, "PATCH", "/vents/ghost", "user-1", `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["error"])
}
