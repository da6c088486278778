// Package cli provides the interactive todokeeper command-line client.
//
// It wires configuration, the local session store and the REST API client
// into a REPL. A saved session is resumed on start, so a login survives
// restarts until the refresh token expires or the user logs out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
