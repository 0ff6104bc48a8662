package reaction_test

import (
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

func do(t *testing.T, r http.Handler, method, path, user, body string) (*httptest.ResponseRecorder, map[string]any) {
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

func TestToggleLifecycle(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	_, created := do(t, r, "POST", "/vents", "author", `{"content":"vent"}`)
	id := created["id"].(string)
	toggle := "/vents/" + id + "/reactions/toggle"
	mine := "/vents/" + id + "/reactions/me"

	rec, body := do(t, r, "POST", toggle, "user-1", `{"type":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "like", body["type"])

	// Switching reaction types replaces the old one.
	rec, body = do(t, r, "POST", toggle, "user-1", `{"type":"hug"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hug", body["type"])

	_, body = do(t, r, "GET", mine, "user-1", ``)
	assert.Equal(t, "hug", body["type"])

	// Toggling the same type again removes it.
	rec, body = do(t, r, "POST", toggle, "user-1", `{"type":"hug"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", body["type"])

	_, vent := do(t, r, "GET", "/vents/"+id, "user-1", ``)
	assert.Empty(t, vent["reactions"])
}

func TestToggleValidation(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	_, created := do(t, r, "POST", "/vents", "author", `{"content":"vent"}`)
	id := created["id"].(string)

	rec, body := do(t, r, "POST", "/vents/"+id+"/reactions/toggle", "user-1", `{"type":"wave"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidRequest", body["error"])

	rec, body = do(t, r, "POST", "/vents/ghost/reactions/toggle", "user-1", `{"type":"like"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["error"])
}

func TestHistogramAcrossUsers(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	r := newRouter(t, ms)

	_, created := do(t, r, "POST", "/vents", "author", `{"content":"vent"}`)
	id := created["id"].(string)
	toggle := "/vents/" + id + "/reactions/toggle"

	do(t, r, "POST", toggle, "user-1", `{"type":"like"}`)
	do(t, r, "POST", toggle, "user-2", `{"type":"like"}`)
	do(t, r, "POST", toggle, "user-3", `{"type":"support"}`)

	_, vent := do(t, r, "GET", "/vents/"+id, "anyone", ``)
	reactionsMap := vent["reactions"].(map[string]any)
	assert.Equal(t, float64(2), reactionsMap["like"])
	assert.Equal(t, float64(1), reactionsMap["support"])
}
