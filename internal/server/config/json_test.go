package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":    "www.example:9000",
		"database_dsn":          "postgres://u:p@h/picshare",
		"tokeninfo_endpoint":    "http://tokeninfo.example",
		"share_worker_interval": "30s",
		"default_page_size":     25,
		"max_page_size":         250,
		"cors_allowed_origin":   "http://app.example",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://u:p@h/picshare", cfg.DatabaseDSN)
		assert.Equal(t, "http://tokeninfo.example", cfg.TokenInfoEndpoint)
		assert.Equal(t, 30*time.Second, cfg.ShareWorkerInterval)
		assert.Equal(t, 25, cfg.DefaultPageSize)
		assert.Equal(t, 250, cfg.MaxPageSize)
		assert.Equal(t, "http://app.example", cfg.CORSAllowedOrigin)
	})

	t.Run("partial file keeps defaults for absent keys", func(t *testing.T) {
		partial := writeTempJSON(t, "", "partial.json", map[string]any{
			"database_dsn": "postgres://u:p@h/picshare",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "postgres://u:p@h/picshare", cfg.DatabaseDSN)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 5*time.Second, cfg.ShareWorkerInterval)
		assert.Equal(t, 10, cfg.DefaultPageSize)
	})

	t.Run("no flag means no overlay", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		before := *cfg
		parseJson(cfg)

		assert.Equal(t, before, *cfg)
	})

	t.Run("panics on invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o600))
		os.Args = []string{"testbin", "-c", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
