package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no extractor can handle.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyQuestion indicates a blank question was submitted.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrFileTooLarge indicates an upload exceeded the configured ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Model-assisted routing and synthesis fall back to rules and concatenation.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// The retrieval index cannot ingest or search without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates the embedding model and the vector index
	// disagree on vector size. This is a fatal configuration error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexOutOfSync indicates a persistent vector index and the chunk
	// store disagree on how many chunks exist.
	ErrIndexOutOfSync = errors.New("vector index out of sync with chunk store")

	// ErrProviderUnavailable indicates an external search provider failed
	// or is not configured.
	ErrProviderUnavailable = errors.New("search provider unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedReply indicates a model reply could not be parsed.
	ErrMalformedReply = errors.New("malformed model reply")
)
