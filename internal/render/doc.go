// Package render turns a transcript into its four output artifacts: plain
// text, SRT, WebVTT, and a self-contained searchable HTML page.
//
// Renderers return in-memory strings and never touch the filesystem;
// persistence belongs to the artifacts package. Every renderer is pure: the
// same transcript and metadata always produce byte-identical output.
//
// The HTML artifact is built through html/template so all dynamic text is
// escaped by construction, including titles, segment text, and source URLs.
package render
