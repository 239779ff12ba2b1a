package httpapi

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mousdieng/buy01/internal/checkout"
)

func TestSubjectFromToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"sub claim", bearerToken("u1"), "u1"},
		{"id fallback", "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"id":"u2"}`)) + ".s", "u2"},
		{"sub wins over id", "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","id":"u2"}`)) + ".s", "u1"},
		{"not a jwt", "opaque-token", ""},
		{"bad base64", "h.!!!.s", ""},
		{"bad json", "h." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".s", ""},
		{"no subject", "h." + base64.RawURLEncoding.EncodeToString([]byte(`{}`)) + ".s", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectFromToken(tt.token))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer opaque-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+bearerToken("u7"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u7", gotUserID)
	})
}

func TestSessionManager(t *testing.T) {
	var built int
	manager := NewSessionManager(func(userID string) *checkout.Orchestrator {
		built++
		return checkout.NewOrchestrator(checkout.Config{UserID: userID, Bridge: &stubBridge{}})
	})

	first := manager.Get("u1")
	assert.Same(t, first, manager.Get("u1"))
	assert.NotSame(t, first, manager.Get("u2"))
	assert.Equal(t, 2, built)

	// dropping discards the session; the next Get builds a fresh one
	manager.Drop("u1")
	assert.NotSame(t, first, manager.Get("u1"))
	assert.Equal(t, 3, built)

	// dropping an unknown user is a no-op
	manager.Drop("ghost")
}
