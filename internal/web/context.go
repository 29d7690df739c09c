package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for activity logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// clientIP returns the request's client address without the port.
// RemoteAddr is already processed by TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ownerID returns the authenticated user id placed in the context by
// UserIdentity. Routes outside /api have none.
func ownerID(r *http.Request) int64 {
	id, _ := core.GetUserIDFromContext(r.Context())
	return id
}
