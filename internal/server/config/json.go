package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/picshare/internal/flagx"
	"github.com/dmitrijs2005/picshare/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Fields are pointers so that keys absent from the file keep the
// defaults already loaded into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	DatabaseDSN         *string         `json:"database_dsn"`
	TokenInfoEndpoint   *string         `json:"tokeninfo_endpoint"`
	ShareWorkerInterval *timex.Duration `json:"share_worker_interval"`
	DefaultPageSize     *int            `json:"default_page_size"`
	MaxPageSize         *int            `json:"max_page_size"`
	CORSAllowedOrigin   *string         `json:"cors_allowed_origin"`
}

// parseJson overlays configuration values from a JSON file onto the
// provided Config instance; only keys present in the file are applied. The
// file path comes from the -c or -config command-line flags; if neither is
// set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.TokenInfoEndpoint != nil {
		config.TokenInfoEndpoint = *c.TokenInfoEndpoint
	}
	if c.ShareWorkerInterval != nil {
		config.ShareWorkerInterval = time.Duration(c.ShareWorkerInterval.Duration)
	}
	if c.DefaultPageSize != nil {
		config.DefaultPageSize = *c.DefaultPageSize
	}
	if c.MaxPageSize != nil {
		config.MaxPageSize = *c.MaxPageSize
	}
	if c.CORSAllowedOrigin != nil {
		config.CORSAllowedOrigin = *c.CORSAllowedOrigin
	}
}
