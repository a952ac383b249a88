package policy

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

func TestPutAndGetPolicy(t *testing.T) {
	r := newTestRouter(NewMemoryStore())

	w := doJSON(t, r, http.MethodPut, "/v1/users/u1/policy", gin.H{
		"maxAmount":             10000,
		"allowedLocations":      []string{"Mumbai", "Pune"},
		"blockUnknownLocations": true,
		"allowedTimeRange":      gin.H{"start": "22:00", "end": "06:00"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/v1/users/u1/policy", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got Policy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.MaxAmount)
	assert.Equal(t, 10000.0, *got.MaxAmount)
	assert.Equal(t, []string{"Mumbai", "Pune"}, got.AllowedLocations)
	assert.True(t, got.BlockUnknownLocations)
	require.NotNil(t, got.AllowedTimeRange)
	assert.Equal(t, "22:00", got.AllowedTimeRange.Start)
}

func TestGetMissingPolicy(t *testing.T) {
	r := newTestRouter(NewMemoryStore())
	w := doJSON(t, r, http.MethodGet, "/v1/users/nobody/policy", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutInvalidPolicy(t *testing.T) {
	r := newTestRouter(NewMemoryStore())

	w := doJSON(t, r, http.MethodPut, "/v1/users/u1/policy", gin.H{
		"maxAmount": -50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/v1/users/u1/policy", gin.H{
		"allowedTimeRange": gin.H{"start": "99:00", "end": "06:00"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckEndpoint(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	max := 100.0
	require.NoError(t, store.Put(t.Context(), &Policy{UserID: "u1", MaxAmount: &max}))

	w := doJSON(t, r, http.MethodPost, "/v1/policies/check", gin.H{
		"userId": "u1",
		"amount": 250,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Allowed)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "max_amount", res.Violations[0].Policy)
}

func TestCheckEndpointNoPolicy(t *testing.T) {
	r := newTestRouter(NewMemoryStore())

	w := doJSON(t, r, http.MethodPost, "/v1/policies/check", gin.H{
		"userId": "fresh",
		"amount": 250,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Allowed, "no configured policy is vacuously allowed")
}

func TestCheckEndpointOvernightWindow(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	require.NoError(t, store.Put(t.Context(), &Policy{
		UserID:           "u1",
		AllowedTimeRange: &TimeRange{Start: "22:00", End: "06:00"},
	}))

	w := doJSON(t, r, http.MethodPost, "/v1/policies/check", gin.H{
		"userId": "u1",
		"amount": 50,
		"at":     "2025-06-15T23:30:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Allowed)

	w = doJSON(t, r, http.MethodPost, "/v1/policies/check", gin.H{
		"userId": "u1",
		"amount": 50,
		"at":     "2025-06-15T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Allowed)
}
