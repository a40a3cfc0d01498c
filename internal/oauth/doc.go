// Package oauth drives the delegated authorization handshake for remote MCP
// servers and persists its state in a secret.Store.
//
// The token exchange itself is performed by the transport's OAuth handler
// (github.com/mark3labs/mcp-go/client/transport). This package supplies what
// the handler leaves to the client: a loopback [CallbackListener] that waits
// for exactly one redirect, the browser hand-off, and persistence of client
// registration, tokens and PKCE verifier under
//
//	oauth.<serverID>.clientInformation
//	oauth.<serverID>.tokens
//	oauth.<serverID>.codeVerifier
//	oauth.<serverID>.serverUrl
//
// where serverID is [ServerID] of the server URL. Records are never removed
// automatically; see [Purge].
package oauth
