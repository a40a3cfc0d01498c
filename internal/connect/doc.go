// Package connect turns a server.Descriptor into a live, initialized MCP
// session.
//
// Remote servers are reached through OAuth-enabled transports. When the
// first attempt is rejected with an authorization challenge the Manager
// closes the failed client, runs the authorization flow once and retries
// with a brand-new transport. Every failure is marked with one of
// errors.ErrConnection, errors.ErrHandshake or errors.ErrAuthorization.
package connect
