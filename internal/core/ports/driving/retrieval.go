package driving

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// RetrievalService is the retrieval index: chunked, embedded documents
// searchable by nearest-neighbour distance.
type RetrievalService interface {
	// Ingest chunks, embeds and appends a document's text. source is
	// where the text came from; chunks are titled with its file name.
	// Failures are reported in the result rather than returned.
	Ingest(ctx context.Context, text, source string) domain.IngestResult

	// Search returns up to k chunks closest to the query, closest first.
	Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error)

	// Size returns the number of chunks in the index.
	Size() int
}

// IngestService feeds files into the retrieval index.
type IngestService interface {
	// IngestFile extracts text from a file on disk and ingests it.
	IngestFile(ctx context.Context, path string) domain.IngestResult

	// IngestUpload stores an uploaded file and ingests it.
	// Returns domain.ErrFileTooLarge if the upload exceeds the ceiling.
	IngestUpload(ctx context.Context, filename string, content []byte) (domain.IngestResult, error)

	// IngestDir ingests every supported file below dir.
	IngestDir(ctx context.Context, dir string) ([]FileIngestResult, error)

	// Supports returns true if an extractor handles the file's extension.
	Supports(path string) bool
}

// FileIngestResult pairs a path with its ingestion outcome.
type FileIngestResult struct {
	Path   string
	Result domain.IngestResult
}
