package middleware

import (
	"context"
	"net/http"
	"strings"
)

// The engine does not verify tokens itself; it forwards the caller's bearer
// token to the upstream preference API, which owns authentication. The app
// shell supplies the user id alongside the token.

// context keys
type contextKey string

const (
	UIDKey   contextKey = "uid"
	TokenKey contextKey = "token"
)

// Session extracts the bearer token and user id from the request and stores
// both in the context for the gateway client to forward.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		uid := r.Header.Get("X-User-Id")
		if uid == "" {
			http.Error(w, "missing X-User-Id header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, uid)
		ctx = context.WithValue(ctx, TokenKey, parts[1])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

// Token returns the caller's bearer token for upstream forwarding.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}
