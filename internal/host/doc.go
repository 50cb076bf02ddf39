// Package host provides the built-in implementations of the capability
// surface plugins receive: an in-memory tab list, a shell-backed terminal
// session manager, and a directory-backed file explorer.
//
// These are the editor-side halves of the api package interfaces. They are
// self-contained so the plugin system can run headless, in tests, and under
// the CLI with the same behavior the full editor shows.
package host
