// Package notifications publishes job lifecycle events to an ntfy topic.
//
// The service is event-keyed: stages publish events with small payloads and
// the service renders and filters them according to the configured toggles.
// With no topic configured every publish is a no-op, so callers never guard
// notification calls.
package notifications
