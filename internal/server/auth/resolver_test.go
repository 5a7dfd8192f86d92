package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestResolver_NoCaller(t *testing.T) {
	t.Parallel()

	_, ok := Resolver{}.SubjectID(context.Background())
	require.False(t, ok)
}

func TestResolver_IDTokenPath(t *testing.T) {
	t.Parallel()

	raw := signedIDToken(t, jwt.MapClaims{"sub": "108234"})
	ctx := WithCaller(context.Background(), &Caller{Token: raw, Identity: models.Identity{Email: "a@example.com"}})

	sub, ok := Resolver{}.SubjectID(ctx)
	require.True(t, ok)
	require.Equal(t, "108234", sub)
}

func TestResolver_BearerPathReadsCacheOnly(t *testing.T) {
	t.Parallel()

	cache := NewTokenInfoCache()
	cache.Put("opaque-tok", &TokenInfo{StatusCode: http.StatusOK, UserID: "108999"})

	ctx := WithCaller(context.Background(), &Caller{Token: "opaque-tok"})
	ctx = WithTokenInfoCache(ctx, cache)

	sub, ok := Resolver{}.SubjectID(ctx)
	require.True(t, ok)
	require.Equal(t, "108999", sub)
}

func TestResolver_BearerPathAbsentCases(t *testing.T) {
	t.Parallel()

	t.Run("no cache in context", func(t *testing.T) {
		ctx := WithCaller(context.Background(), &Caller{Token: "opaque-tok"})
		_, ok := Resolver{}.SubjectID(ctx)
		require.False(t, ok)
	})

	t.Run("token not verified this request", func(t *testing.T) {
		ctx := WithCaller(context.Background(), &Caller{Token: "opaque-tok"})
		ctx = WithTokenInfoCache(ctx, NewTokenInfoCache())
		_, ok := Resolver{}.SubjectID(ctx)
		require.False(t, ok)
	})

	t.Run("cached verdict not 200", func(t *testing.T) {
		cache := NewTokenInfoCache()
		cache.Put("opaque-tok", &TokenInfo{StatusCode: http.StatusUnauthorized})
		ctx := WithCaller(context.Background(), &Caller{Token: "opaque-tok"})
		ctx = WithTokenInfoCache(ctx, cache)
		_, ok := Resolver{}.SubjectID(ctx)
		require.False(t, ok)
	})

	t.Run("cached body lacks user_id", func(t *testing.T) {
		cache := NewTokenInfoCache()
		cache.Put("opaque-tok", &TokenInfo{StatusCode: http.StatusOK})
		ctx := WithCaller(context.Background(), &Caller{Token: "opaque-tok"})
		ctx = WithTokenInfoCache(ctx, cache)
		_, ok := Resolver{}.SubjectID(ctx)
		require.False(t, ok)
	})
}
