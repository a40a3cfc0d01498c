// Package cmd holds mcpcli build metadata, injected via ldflags and reported
// by "mcpcli version" and the protocol handshake.
package cmd

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
