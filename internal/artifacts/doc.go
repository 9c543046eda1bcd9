// Package artifacts persists rendered transcript outputs to disk. It is the
// only part of the rendering path that touches the filesystem; the renderers
// themselves produce in-memory strings.
package artifacts
