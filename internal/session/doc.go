// Package session drives a connected server: the interactive
// select-elicit-invoke loop and the single-shot commands used from scripts.
package session
