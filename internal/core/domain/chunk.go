package domain

// Chunk is a window of words cut from an ingested document.
// Chunks are immutable once created and owned by the retrieval index.
type Chunk struct {
	// ID is a unique opaque identifier (uuid).
	ID string

	// Text is the chunk content.
	Text string

	// SourceTitle names the document the chunk was cut from.
	SourceTitle string

	// Source is where the document was read from, usually a file path.
	Source string

	// SequenceIndex is the chunk's ordinal within its source document.
	SequenceIndex int
}

// SearchHit is a chunk returned by a nearest-neighbour search.
type SearchHit struct {
	Chunk Chunk

	// Distance is the L2 distance between query and chunk embeddings.
	// Lower is closer.
	Distance float64
}

// IngestStatus reports whether an ingestion succeeded.
type IngestStatus string

// Ingestion outcomes.
const (
	IngestStatusSuccess IngestStatus = "success"
	IngestStatusError   IngestStatus = "error"
)

// IngestResult is the outcome of feeding one document into the index.
// Failures are reported here rather than as Go errors so callers can
// surface them without aborting.
type IngestResult struct {
	Status          IngestStatus `json:"status"`
	Message         string       `json:"message"`
	ChunksProcessed int          `json:"chunks_processed"`
}

// OK returns true if the ingestion succeeded.
func (r IngestResult) OK() bool {
	return r.Status == IngestStatusSuccess
}
