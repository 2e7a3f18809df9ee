package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the capability.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google AI Studio (Gemini).
	AIProviderGemini AIProvider = "gemini"

	// AIProviderHugot runs a sentence-transformer model in-process.
	AIProviderHugot AIProvider = "hugot"

	// AIProviderHashing is a deterministic feature-hashing embedder.
	// It needs no model or network and is meant for tests and offline use.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic,
		AIProviderGemini, AIProviderHugot, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHugot || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "Disabled"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderHugot:
		return "Hugot (in-process ONNX)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// ModelDir is where local models are downloaded (for Hugot).
	ModelDir string

	// Dimensions is the vector size the index is created with.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if l.Provider == AIProviderHugot || l.Provider == AIProviderHashing {
		return false
	}
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects where chunk embeddings are searched.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory is an exact in-process flat L2 index.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPgvector stores vectors in PostgreSQL with pgvector.
	VectorBackendPgvector VectorBackend = "pgvector"
)

// RetrievalSettings holds chunking and vector index configuration.
type RetrievalSettings struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Backend      VectorBackend
	PgvectorDSN  string
}

// WebProvider selects the web search backend.
type WebProvider string

// Available web search backends.
const (
	WebProviderSerpAPI   WebProvider = "serpapi"
	WebProviderGoogleCSE WebProvider = "googlecse"
)

// SearchProviderSettings holds external search provider configuration.
type SearchProviderSettings struct {
	WebProvider      WebProvider
	WebAPIKey        string
	WebCSEID         string
	WebMaxResults    int
	ArxivMaxResults  int
	ArxivBaseURL     string
	RedisAddr        string
	CacheTTL         time.Duration
	ProviderTimeout  time.Duration
	OrchestratorPool int
}

// LogBackend selects where interaction logs are persisted.
type LogBackend string

// Available log backends.
const (
	LogBackendSQLite   LogBackend = "sqlite"
	LogBackendJSONFile LogBackend = "jsonfile"
	LogBackendMemory   LogBackend = "memory"
)

// ServerSettings holds HTTP server and ingestion configuration.
type ServerSettings struct {
	Addr          string
	UploadDir     string
	MaxFileSize   int64
	LogBackend    LogBackend
	LogFile       string
	SampleDocsDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Search    SearchProviderSettings
	Server    ServerSettings
}

// Default setting values.
const (
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 50
	DefaultTopK            = 3
	DefaultDimensions      = 384
	DefaultArxivMaxResults = 5
	DefaultWebMaxResults   = 5
	DefaultMaxFileSize     = 10 * 1024 * 1024
	DefaultProviderTimeout = 30 * time.Second
	DefaultCacheTTL        = time.Hour
	DefaultWorkers         = 8
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings run in-process with all-MiniLM-L6-v2; the LLM is left
// unconfigured so routing and synthesis use rules until a key is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHugot,
			Model:      "sentence-transformers/all-MiniLM-L6-v2",
			Dimensions: DefaultDimensions,
		},
		LLM: LLMSettings{Provider: AIProviderNone},
		Retrieval: RetrievalSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			TopK:         DefaultTopK,
			Backend:      VectorBackendMemory,
		},
		Search: SearchProviderSettings{
			WebProvider:      WebProviderSerpAPI,
			WebMaxResults:    DefaultWebMaxResults,
			ArxivMaxResults:  DefaultArxivMaxResults,
			CacheTTL:         DefaultCacheTTL,
			ProviderTimeout:  DefaultProviderTimeout,
			OrchestratorPool: DefaultWorkers,
		},
		Server: ServerSettings{
			Addr:          ":8000",
			UploadDir:     "uploads",
			MaxFileSize:   DefaultMaxFileSize,
			LogBackend:    LogBackendSQLite,
			LogFile:       "logs/system_logs.json",
			SampleDocsDir: "sample_pdfs",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHugot,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHashing,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHugot:   "sentence-transformers/all-MiniLM-L6-v2",
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "hashing",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-70b-versatile",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash-002",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"all-minilm":                             384,
		"nomic-embed-text":                       768,
		"mxbai-embed-large":                      1024,
		"text-embedding-3-small":                 1536,
		"text-embedding-3-large":                 3072,
		"text-embedding-ada-002":                 1536,
	}
}
