// Package normalisers holds the text extractors used by ingestion. Each
// extractor turns one family of file extensions into plain text.
package normalisers
