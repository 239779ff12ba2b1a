package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mousdieng/buy01/internal/gateway"
)

type contextKey int

const userIDKey contextKey = iota

// AuthMiddleware extracts the bearer credential from the Authorization
// header. Token validation is the backend's job; here the token is only
// forwarded on outgoing calls, and the subject claim is read unverified to
// key the per-user checkout session.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		userID := subjectFromToken(token)
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "token carries no subject")
			return
		}

		ctx := gateway.WithToken(r.Context(), token)
		ctx = context.WithValue(ctx, userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// subjectFromToken decodes the JWT payload segment and returns the subject
// claim. No signature check: the backend rejects forged tokens on every
// call, the subject is only used for local session keying.
func subjectFromToken(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Sub string `json:"sub"`
		ID  string `json:"id"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	if claims.Sub != "" {
		return claims.Sub
	}
	return claims.ID
}
