// Package config loads runtime configuration for the ProjectShelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the auth gRPC endpoint
//	-d string   path of the local state database
//	-w string   listen address of the web preview
//	-t int      backend request timeout (seconds)
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "state_path": "projectshelf.db",
//	  "web_addr": "127.0.0.1:8080",
//	  "login_route": "/login",
//	  "request_timeout": "10s"
//	}
package config
