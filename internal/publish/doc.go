// Package publish renders every transcript artifact for a queue item and
// persists the set.
//
// All four formats (plain text, SRT, VTT, HTML) are rendered from the stored
// transcript in one pass and written under the output directory using the
// title-derived identifier as the shared base name. The stage also records
// the artifact paths and a short preview on the item and sends the completion
// notification.
package publish
