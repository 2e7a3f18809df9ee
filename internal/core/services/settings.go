package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedModelDir   = "embedding.model_dir"
	keyEmbedDims       = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyChunkSize       = "retrieval.chunk_size"
	keyChunkOverlap    = "retrieval.chunk_overlap"
	keyTopK            = "retrieval.top_k"
	keyVectorBackend   = "retrieval.vector_backend"
	keyPgvectorDSN     = "retrieval.pgvector_dsn"
	keyWebProvider     = "web.provider"
	keyWebAPIKey       = "web.api_key"
	keyWebCSEID        = "web.cse_id"
	keyWebMaxResults   = "web.max_results"
	keyArxivMaxResults = "arxiv.max_results"
	keyArxivBaseURL    = "arxiv.base_url"
	keyRedisAddr       = "cache.redis_addr"
	keyCacheTTL        = "cache.ttl"
	keyProviderTimeout = "orchestrator.provider_timeout"
	keyWorkers         = "orchestrator.workers"
	keyServerAddr      = "server.addr"
	keyUploadDir       = "upload.dir"
	keyMaxFileSize     = "upload.max_file_size"
	keyLogBackend      = "logs.backend"
	keyLogFile         = "logs.file"
	keySampleDir       = "ingest.sample_dir"
)

// Environment variables that supply secrets and endpoints.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvGroqAPIKey      = "GROQ_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGoogleAIAPIKey  = "GOOGLE_AI_API_KEY"
	EnvSerpAPIKey      = "SERPAPI_API_KEY"
	EnvGoogleCSEKey    = "GOOGLE_CSE_API_KEY"
	EnvGoogleCSEID     = "GOOGLE_CSE_ID"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvPgvectorDSN     = "PGVECTOR_DSN"
)

// EnvLookup reads an environment variable. os.Getenv satisfies it.
type EnvLookup func(key string) string

// SettingsService manages application settings.
// Values come from the config store, then environment variables fill in
// secrets, then defaults fill in the rest.
type SettingsService struct {
	configStore driven.ConfigStore
	env         EnvLookup
}

// NewSettingsService creates a new settings service.
// env may be nil, in which case no environment variables are consulted.
func NewSettingsService(configStore driven.ConfigStore, env EnvLookup) *SettingsService {
	if env == nil {
		env = func(string) string { return "" }
	}
	return &SettingsService{
		configStore: configStore,
		env:         env,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			ModelDir:   s.configStore.GetString(keyEmbedModelDir),
			Dimensions: s.getInt(keyEmbedDims, 0),
		},
		LLM: domain.LLMSettings{
			Provider: s.llmProvider(),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:    s.getInt(keyChunkSize, d.Retrieval.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, d.Retrieval.ChunkOverlap),
			TopK:         s.getInt(keyTopK, d.Retrieval.TopK),
			Backend:      domain.VectorBackend(s.getString(keyVectorBackend, string(d.Retrieval.Backend))),
			PgvectorDSN:  s.getString(keyPgvectorDSN, s.env(EnvPgvectorDSN)),
		},
		Search: domain.SearchProviderSettings{
			WebProvider:      domain.WebProvider(s.getString(keyWebProvider, string(d.Search.WebProvider))),
			WebAPIKey:        s.configStore.GetString(keyWebAPIKey),
			WebCSEID:         s.getString(keyWebCSEID, s.env(EnvGoogleCSEID)),
			WebMaxResults:    s.getInt(keyWebMaxResults, d.Search.WebMaxResults),
			ArxivMaxResults:  s.getInt(keyArxivMaxResults, d.Search.ArxivMaxResults),
			ArxivBaseURL:     s.configStore.GetString(keyArxivBaseURL),
			RedisAddr:        s.getString(keyRedisAddr, s.env(EnvRedisAddr)),
			CacheTTL:         s.getDuration(keyCacheTTL, d.Search.CacheTTL),
			ProviderTimeout:  s.getDuration(keyProviderTimeout, d.Search.ProviderTimeout),
			OrchestratorPool: s.getInt(keyWorkers, d.Search.OrchestratorPool),
		},
		Server: domain.ServerSettings{
			Addr:          s.getString(keyServerAddr, d.Server.Addr),
			UploadDir:     s.getString(keyUploadDir, d.Server.UploadDir),
			MaxFileSize:   int64(s.getInt(keyMaxFileSize, int(d.Server.MaxFileSize))),
			LogBackend:    domain.LogBackend(s.getString(keyLogBackend, string(d.Server.LogBackend))),
			LogFile:       s.getString(keyLogFile, d.Server.LogFile),
			SampleDocsDir: s.getString(keySampleDir, d.Server.SampleDocsDir),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = d.Embedding.Dimensions
		if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Embedding.Dimensions = dims
		}
	}
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.env(EnvOpenAIAPIKey)
	}

	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.llmKeyFromEnv(settings.LLM.Provider)
	}

	if settings.Search.WebAPIKey == "" {
		switch settings.Search.WebProvider {
		case domain.WebProviderGoogleCSE:
			settings.Search.WebAPIKey = s.env(EnvGoogleCSEKey)
		default:
			settings.Search.WebAPIKey = s.env(EnvSerpAPIKey)
		}
	}

	return settings, nil
}

// Set stores a single key and persists the config file.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, parseScalar(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	values := map[string]any{
		keyEmbedProvider: provider.String(),
		keyEmbedModel:    model,
	}
	if dims, ok := domain.EmbeddingDimensions()[model]; ok {
		values[keyEmbedDims] = dims
	}
	if provider == domain.AIProviderOllama && s.configStore.GetString(keyEmbedBaseURL) == "" {
		values[keyEmbedBaseURL] = "http://localhost:11434"
	}
	if apiKey != "" {
		values[keyEmbedAPIKey] = apiKey
	}

	return s.saveAll(values)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if provider != domain.AIProviderNone {
		valid := false
		for _, p := range domain.AllLLMProviders() {
			if p == provider {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid LLM provider: %s", provider)
		}
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.llmKeyFromEnv(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	values := map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
	}
	if provider == domain.AIProviderOllama && s.configStore.GetString(keyLLMBaseURL) == "" {
		values[keyLLMBaseURL] = "http://localhost:11434"
	}
	if apiKey != "" {
		values[keyLLMAPIKey] = apiKey
	}

	return s.saveAll(values)
}

// Validate checks the current settings for inconsistencies.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	r := settings.Retrieval
	if r.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", domain.ErrInvalidInput)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	switch r.Backend {
	case domain.VectorBackendMemory:
	case domain.VectorBackendPgvector:
		if r.PgvectorDSN == "" {
			return fmt.Errorf("%w: pgvector backend requires %s", domain.ErrInvalidInput, keyPgvectorDSN)
		}
	default:
		return fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, r.Backend)
	}
	switch settings.Server.LogBackend {
	case domain.LogBackendSQLite, domain.LogBackendJSONFile, domain.LogBackendMemory:
	default:
		return fmt.Errorf("%w: unknown log backend %q", domain.ErrInvalidInput, settings.Server.LogBackend)
	}
	if settings.Server.MaxFileSize <= 0 {
		return fmt.Errorf("%w: upload ceiling must be positive", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// llmProvider picks the configured LLM provider. With nothing configured,
// a Groq key in the environment enables Groq.
func (s *SettingsService) llmProvider() domain.AIProvider {
	val := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if val == domain.AIProviderNone || val.IsValid() {
		return val
	}
	if s.env(EnvGroqAPIKey) != "" {
		return domain.AIProviderGroq
	}
	return domain.AIProviderNone
}

func (s *SettingsService) llmKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGroq:
		return s.env(EnvGroqAPIKey)
	case domain.AIProviderOpenAI:
		return s.env(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.env(EnvAnthropicAPIKey)
	case domain.AIProviderGemini:
		return s.env(EnvGoogleAIAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) saveAll(values map[string]any) error {
	for k, v := range values {
		if err := s.configStore.Set(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return s.configStore.Save()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// parseScalar converts CLI input into the TOML type it most likely means.
func parseScalar(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
