// Package daemon coordinates the long-running Quill process.
//
// It wires configuration, queue storage, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances,
// and serves the localhost HTTP API the CLI talks to. Job submission rules
// (extension policy, URL validation) are enforced here at the boundary so
// rejected work never reaches the queue.
//
// Keep orchestration logic here: individual workflow stages live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
