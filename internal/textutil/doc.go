// Package textutil normalizes titles and filenames.
//
// Two canonical forms are produced from arbitrary input:
//   - SafeDisplayName: a readable ASCII form shown in page titles and links
//   - Identifier: a compact alphanumeric form used as the base name for
//     every artifact rendered from one title
package textutil
