// Package form owns the message envelope and appendix codecs.
//
// Ownership boundary:
// - Form construction and validity rules
// - Codec contract for the structured appendix
// - JSON, gob, and zstd-wrapped codec implementations
package form
