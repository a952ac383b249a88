package profile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).RegisterRoutes(r.Group("/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetProfileSummary(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	p := New("u1", true)
	p.Observe(100, 9, true)
	p.Observe(200, 9, true)
	require.NoError(t, store.Put(t.Context(), p))

	w := doJSON(t, r, http.MethodGet, "/v1/users/u1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var s Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, 150.0, s.AmountMean)
	assert.Equal(t, []int{9}, s.PreferredHours)
	assert.True(t, s.LearningEnabled)
}

func TestGetMissingProfile(t *testing.T) {
	r := newTestRouter(NewMemoryStore())
	w := doJSON(t, r, http.MethodGet, "/v1/users/nobody/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLearningToggleCreatesProfile(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPut, "/v1/users/u1/profile/learning", gin.H{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := store.Get(t.Context(), "u1")
	require.NoError(t, err)
	assert.True(t, p.LearningEnabled)

	w = doJSON(t, r, http.MethodPut, "/v1/users/u1/profile/learning", gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	p, err = store.Get(t.Context(), "u1")
	require.NoError(t, err)
	assert.False(t, p.LearningEnabled)
}

func TestLearningToggleRequiresBody(t *testing.T) {
	r := newTestRouter(NewMemoryStore())
	w := doJSON(t, r, http.MethodPut, "/v1/users/u1/profile/learning", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrustedLocationEndpoints(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/v1/users/u1/locations", gin.H{"name": "Mumbai Central"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/v1/users/u1/locations", gin.H{"name": "Pune"})
	require.Equal(t, http.StatusOK, w.Code)

	p, err := store.Get(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mumbai Central", "Pune"}, p.TrustedLocations)

	w = doJSON(t, r, http.MethodDelete, "/v1/users/u1/locations/Pune", nil)
	require.Equal(t, http.StatusOK, w.Code)

	p, err = store.Get(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mumbai Central"}, p.TrustedLocations)
}

func TestResetEndpoint(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	p := New("u1", true)
	p.Observe(500, 10, true)
	require.NoError(t, store.Put(t.Context(), p))

	w := doJSON(t, r, http.MethodDelete, "/v1/users/u1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.Get(t.Context(), "u1")
	require.NoError(t, err)
	assert.Zero(t, got.AmountCount)
	assert.True(t, got.LearningEnabled, "reset keeps consent")
}
