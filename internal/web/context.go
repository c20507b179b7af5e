package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/crunchclean/internal/core"
	mw "github.com/JonMunkholm/crunchclean/internal/web/middleware"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for run logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
