// Package main hosts the Quill CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon API, queue maintenance operations, log tailing,
// and configuration scaffolding. When the daemon is not running, queue
// commands fall back to direct store access so the queue stays inspectable.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
