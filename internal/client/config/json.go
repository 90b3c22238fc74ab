package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/flagx"
	"github.com/dmitrijs2005/projectshelf/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Empty fields keep the
// value already in Config.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	StatePath          string         `json:"state_path"`
	WebAddr            string         `json:"web_addr"`
	LoginRoute         string         `json:"login_route"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.StatePath != "" {
		cfg.StatePath = jc.StatePath
	}
	if jc.WebAddr != "" {
		cfg.WebAddr = jc.WebAddr
	}
	if jc.LoginRoute != "" {
		cfg.LoginRoute = jc.LoginRoute
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
