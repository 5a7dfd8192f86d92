package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/picshare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-i string   token introspection endpoint URL
//	-w int      share worker poll interval, seconds
//	-n int      default photo list page size
//	-m int      maximum photo list page size
//	-o string   allowed CORS origin
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components (and with
// go test flags). The interval flag is accepted as an integer in seconds
// and converted to a time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-w", "-n", "-m", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenInfoEndpoint, "i", config.TokenInfoEndpoint, "token introspection endpoint")

	shareWorkerInterval := fs.Int("w", int(config.ShareWorkerInterval.Seconds()), "share worker poll interval (in seconds)")

	fs.IntVar(&config.DefaultPageSize, "n", config.DefaultPageSize, "default page size for photo list")
	fs.IntVar(&config.MaxPageSize, "m", config.MaxPageSize, "maximum page size for photo list")
	fs.StringVar(&config.CORSAllowedOrigin, "o", config.CORSAllowedOrigin, "allowed CORS origin")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShareWorkerInterval = time.Duration(*shareWorkerInterval) * time.Second
}
