// Package logs reads the tail of daemon log files. The daemon serves the
// result over its HTTP API and the CLI falls back to reading the file
// directly when no daemon is running.
package logs
