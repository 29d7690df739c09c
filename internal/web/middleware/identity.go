package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// UserIdentity reads the authenticated user id from header and stores it in
// the request context. The id is set by the upstream gateway; requests
// without a positive integer id are rejected.
func UserIdentity(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = "X-User-ID"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" {
				logRejected(r, "auth: missing user id")
				reject(w, http.StatusUnauthorized, "missing user id", "AUTH_MISSING_USER")
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				logRejected(r, "auth: invalid user id")
				reject(w, http.StatusUnauthorized, "invalid user id", "AUTH_INVALID_USER")
				return
			}

			if slot, ok := r.Context().Value(userSlotKey{}).(*int64); ok {
				*slot = id
			}
			next.ServeHTTP(w, r.WithContext(core.ContextWithUserID(r.Context(), id)))
		})
	}
}

// userSlotKey carries a pointer Logger reads after the handler returns.
type userSlotKey struct{}

func withUserSlot(ctx context.Context, slot *int64) context.Context {
	return context.WithValue(ctx, userSlotKey{}, slot)
}
