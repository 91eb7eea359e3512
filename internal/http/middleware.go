package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devxankit/mv-store-cart/internal/remote"
)

// BearerTokenMiddleware lifts the caller's bearer token into the request
// context so outgoing cart API calls authenticate as that user. Requests
// without a token pass through; the remote API answers 401 and that surfaces
// through the store's error field like any other rejection.
func BearerTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			r = r.WithContext(remote.ContextWithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}
