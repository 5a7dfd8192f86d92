package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospect_ValidToken(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "tok-1", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"108234","email":"a@example.com","verified_email":true,"expires_in":3600}`))
	}))
	defer srv.Close()

	cache := NewTokenInfoCache()
	info, err := NewIntrospector(srv.URL).Introspect(context.Background(), cache, "tok-1")
	require.NoError(t, err)
	require.True(t, info.Valid())
	assert.Equal(t, "108234", info.UserID)
	assert.Equal(t, "a@example.com", info.Email)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))

	cached, ok := cache.Get("tok-1")
	require.True(t, ok, "response must be cached under the literal token")
	assert.Same(t, info, cached)
}

func TestIntrospect_InvalidTokenCachedAsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cache := NewTokenInfoCache()
	info, err := NewIntrospector(srv.URL).Introspect(context.Background(), cache, "bad")
	require.NoError(t, err, "a failed verification is a verdict, not an error")
	assert.False(t, info.Valid())

	cached, ok := cache.Get("bad")
	require.True(t, ok)
	assert.False(t, cached.Valid())
}

func TestVerifyIDToken_FoldsIDTokenClaims(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "h.p.s", r.URL.Query().Get("id_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"108234","email":"a@example.com","email_verified":"true","aud":"client-1"}`))
	}))
	defer srv.Close()

	cache := NewTokenInfoCache()
	info, err := NewIntrospector(srv.URL).VerifyIDToken(context.Background(), cache, "h.p.s")
	require.NoError(t, err)
	require.True(t, info.Valid())
	assert.Equal(t, "108234", info.UserID)
	assert.Equal(t, "a@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
	assert.Equal(t, "client-1", info.Audience)

	cached, ok := cache.Get("h.p.s")
	require.True(t, ok)
	assert.Same(t, info, cached)
}

func TestVerifyIDToken_BadSignatureVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cache := NewTokenInfoCache()
	info, err := NewIntrospector(srv.URL).VerifyIDToken(context.Background(), cache, "h.p.forged")
	require.NoError(t, err)
	assert.False(t, info.Valid())
}

func TestIntrospect_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	cache := NewTokenInfoCache()
	_, err := NewIntrospector(srv.URL).Introspect(context.Background(), cache, "tok")
	require.Error(t, err)

	_, ok := cache.Get("tok")
	assert.False(t, ok, "nothing should be cached on transport failure")
}

func TestTokenInfoCache_PerTokenIsolation(t *testing.T) {
	cache := NewTokenInfoCache()
	cache.Put("a", &TokenInfo{StatusCode: http.StatusOK, UserID: "u-a"})

	_, ok := cache.Get("b")
	assert.False(t, ok)

	info, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, "u-a", info.UserID)
}
