package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags handled
// here are passed to the FlagSet (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-w", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.StatePath, "d", cfg.StatePath, "local state database path")
	fs.StringVar(&cfg.WebAddr, "w", cfg.WebAddr, "web preview listen address")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
