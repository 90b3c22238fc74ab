// Package cli provides the interactive ProjectShelf command-line client.
//
// NewApp wires the local state database, the gRPC auth client, the session
// store, the access gate and the web preview. App.Run restores the persisted
// session and starts the REPL (see runREPL), which blocks until the user exits.
//
// Commands that show or change the profile (dashboard, onboarding, profile,
// avatar) pass through the access gate; a signed-out user is taken to the
// login prompt instead.
package cli
