package config

import "time"

// Config holds runtime settings for the ProjectShelf CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the auth gRPC endpoint.
//   - StatePath: SQLite file holding the persisted session and tokens.
//   - WebAddr: listen address of the local web preview ("serve" command).
//   - LoginRoute: where the access gate sends signed-out visitors.
//   - RequestTimeout: upper bound for a single backend call.
type Config struct {
	ServerEndpointAddr string
	StatePath          string
	WebAddr            string
	LoginRoute         string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.StatePath = "projectshelf.db"
	c.WebAddr = "127.0.0.1:8080"
	c.LoginRoute = "/login"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then JSON (if -c/-config is given), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
