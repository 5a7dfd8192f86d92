// Package auth resolves the identity provider subject ID of the caller of
// the current request. Token verification itself is delegated to the
// identity provider; this package only decodes self-contained tokens and
// interprets cached introspection responses.
package auth

import (
	"context"

	"github.com/dmitrijs2005/picshare/internal/server/models"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	tokenCacheKey
)

// Caller is the transport-authenticated user of the current request: the
// raw presented token plus the identity the platform derived from it.
type Caller struct {
	Token    string
	Identity models.Identity
}

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext extracts the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey).(*Caller)
	return c, ok && c != nil
}

// WithTokenInfoCache returns a context carrying a request-scoped
// introspection cache.
func WithTokenInfoCache(ctx context.Context, cache *TokenInfoCache) context.Context {
	return context.WithValue(ctx, tokenCacheKey, cache)
}

// TokenInfoCacheFromContext extracts the request-scoped introspection
// cache, if any.
func TokenInfoCacheFromContext(ctx context.Context) (*TokenInfoCache, bool) {
	c, ok := ctx.Value(tokenCacheKey).(*TokenInfoCache)
	return c, ok && c != nil
}
