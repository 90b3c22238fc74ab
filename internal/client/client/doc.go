// Package client contains the CLI's connection to the ProjectShelf auth
// server and its local database bootstrap.
//
// GRPCClient implements the session store's backend contract over gRPC. It
// attaches the access token to every call through a unary interceptor,
// refreshes an expired access token once and retries, and keeps the token
// pair in the local_state table so a restarted CLI can resume the server
// session. gRPC status codes are mapped to the sentinel errors in errors.go;
// match them with errors.Is.
//
// InitDatabase opens the SQLite database and applies the embedded goose
// migrations.
package client
