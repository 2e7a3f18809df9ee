package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// validateTimeout bounds a provider connectivity check.
const validateTimeout = 10 * time.Second

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, search providers and server options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Stores one dotted key in the config file, for example:

  sercha-agents settings set retrieval.top_k 5
  sercha-agents settings set web.provider googlecse
  sercha-agents settings set orchestrator.provider_timeout 20s`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all providers step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and search documents.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for routing and answer synthesis.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.ConfigPath())
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	if settings.LLM.IsConfigured() {
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", displayKey(settings.LLM.APIKey))
		}
		cmd.Println("  Routing: model-assisted, synthesis: model")
	} else {
		cmd.Println("  Routing: keyword rules, synthesis: concatenation")
	}
	cmd.Println()

	// Retrieval settings
	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk size: %d words, overlap %d\n", settings.Retrieval.ChunkSize, settings.Retrieval.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Vector backend: %s\n", settings.Retrieval.Backend)
	cmd.Println()

	// Search providers
	cmd.Println("[Search]")
	cmd.Printf("  Web provider: %s\n", settings.Search.WebProvider)
	cmd.Printf("  Web API key: %s\n", displayKey(settings.Search.WebAPIKey))
	if settings.Search.WebProvider == domain.WebProviderGoogleCSE {
		cmd.Printf("  Search engine ID: %s\n", settings.Search.WebCSEID)
	}
	cmd.Printf("  ArXiv max results: %d\n", settings.Search.ArxivMaxResults)
	if settings.Search.RedisAddr != "" {
		cmd.Printf("  Cache: redis at %s (ttl %s)\n", settings.Search.RedisAddr, settings.Search.CacheTTL)
	}
	cmd.Printf("  Provider timeout: %s\n", settings.Search.ProviderTimeout)
	cmd.Println()

	// Server settings
	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Upload dir: %s (max %d bytes)\n", settings.Server.UploadDir, settings.Server.MaxFileSize)
	cmd.Printf("  Log backend: %s\n", settings.Server.LogBackend)
	cmd.Printf("  Sample dir: %s\n", settings.Server.SampleDocsDir)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sercha-agents settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Settings Wizard")
	cmd.Println("===============")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Print("Use an LLM for routing and synthesis? [y/N]: ")
	if strings.EqualFold(readLine(reader), "y") {
		if err := configureLLMProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		if err := settingsService.SetLLMProvider(domain.AIProviderNone, "", ""); err != nil {
			return fmt.Errorf("failed to disable LLM: %w", err)
		}
		cmd.Println("Keyword routing and concatenated answers will be used.")
		cmd.Println()
	}

	cmd.Println("Step 3: Configure Web Search")
	cmd.Println("----------------------------")
	if err := configureWebSearch(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureWebSearch(cmd *cobra.Command, reader *bufio.Reader) error {
	providers := []domain.WebProvider{domain.WebProviderSerpAPI, domain.WebProviderGoogleCSE}
	cmd.Println("Select Web Search Provider")
	cmd.Println("  1. SerpAPI")
	cmd.Println("  2. Google Custom Search")
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	if err := settingsService.Set("web.provider", string(selected)); err != nil {
		return fmt.Errorf("failed to set web provider: %w", err)
	}

	cmd.Print("Enter API key (blank to use the environment): ")
	if apiKey := readSecret(cmd, reader); apiKey != "" {
		if err := settingsService.Set("web.api_key", apiKey); err != nil {
			return fmt.Errorf("failed to set web API key: %w", err)
		}
	}

	if selected == domain.WebProviderGoogleCSE {
		cmd.Print("Enter search engine ID: ")
		if id := readLine(reader); id != "" {
			if err := settingsService.Set("web.cse_id", id); err != nil {
				return fmt.Errorf("failed to set search engine ID: %w", err)
			}
		}
	}

	// Web search is optional; a bad key only disables the agent.
	if err := validateProvider(cmd, func(ctx context.Context, s *domain.AppSettings) error {
		return configValidator.ValidateWebSearch(ctx, &s.Search)
	}); err != nil {
		cmd.Printf("Web search will be unavailable until this is fixed.\n\n")
		return nil
	}

	cmd.Printf("Web search configured: %s\n\n", selected)
	return nil
}

//nolint:dupl // Mirrors configureLLMProvider.
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if err := validateProvider(cmd, func(ctx context.Context, s *domain.AppSettings) error {
		return configValidator.ValidateEmbedding(ctx, &s.Embedding)
	}); err != nil {
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Mirrors configureEmbeddingProvider.
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if err := validateProvider(cmd, func(ctx context.Context, s *domain.AppSettings) error {
		return configValidator.ValidateLLM(ctx, &s.LLM)
	}); err != nil {
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

// validateProvider pings the freshly saved provider. It is skipped when
// no validator is wired.
func validateProvider(cmd *cobra.Command, check func(context.Context, *domain.AppSettings) error) error {
	if configValidator == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Print("Validating configuration... ")
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()
	if err := check(ctx, settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return err
	}
	cmd.Println("OK")
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
