// Package connectors holds document sources that feed ingestion.
// The filesystem connector watches a local directory.
package connectors
