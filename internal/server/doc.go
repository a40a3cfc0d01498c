// Package server describes how to reach an MCP server and reads server lists
// from the config files of applications that declare them.
//
// A [Descriptor] is either a launch descriptor (a command spawned as a child
// process speaking over stdio) or a remote descriptor (an http(s) URL reached
// over SSE or streamable HTTP). Descriptors are immutable once resolved.
//
// # Server Config Files
//
// [LoadFile] selects a decoder by file extension:
//
//	.json         {"mcpServers": {...}} or {"servers": {...}}
//	.toml         [mcp_servers.<name>]
//	.yaml, .yml   mcpServers: {...}
//
// Each entry accepts command, args, env, url, headers, disabled and a
// transport hint under "type" or "transport" (stdio, sse, http,
// streamable-http).
package server
