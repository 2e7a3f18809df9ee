// Package cli provides the cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	envFile string
)

// Services are the driving ports commands run against.
type Services struct {
	Ask       driving.AskService
	Logs      driving.LogService
	Retrieval driving.RetrievalService
	Ingest    driving.IngestService

	// Settings is the configuration the services were built from.
	Settings domain.AppSettings

	// Providers reports which agents and model services are usable.
	Providers map[string]bool

	// Warnings lists non-fatal problems found while building.
	Warnings []string

	// Close releases resources. Optional.
	Close func()
}

// Builder assembles Services from settings.
type Builder func(ctx context.Context, settings domain.AppSettings) (*Services, error)

// ConfigValidator checks provider settings by connecting to them.
type ConfigValidator interface {
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
	ValidateWebSearch(ctx context.Context, config *domain.SearchProviderSettings) error
}

// Config wires the command tree to the application.
type Config struct {
	Settings  driving.SettingsService
	Validator ConfigValidator
	Build     Builder
}

var (
	settingsService driving.SettingsService
	configValidator ConfigValidator
	buildServices   Builder

	// services is built lazily by commands that need it.
	services *Services
)

var rootCmd = &cobra.Command{
	Use:   "sercha-agents",
	Short: "Multi-agent question answering over documents, arXiv and the web",
	Long: `sercha-agents routes each question to one or more agents:

  pdf_rag     - semantic search over ingested PDF, markdown and text files
  arxiv       - academic paper search
  web_search  - web search via SerpAPI or Google Custom Search

Their findings are merged into a single answer and every interaction is logged.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeServices() },
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default: .env if present)")
}

// Configure injects the services the commands run against.
func Configure(cfg Config) {
	settingsService = cfg.Settings
	configValidator = cfg.Validator
	buildServices = cfg.Build
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}
	return nil
}

// loadServices builds the services on first use.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if settingsService == nil || buildServices == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := buildServices(ctx, *settings)
	if err != nil {
		return nil, err
	}
	for _, w := range svc.Warnings {
		logger.Debug("Startup warning: %s", w)
	}
	services = svc
	return svc, nil
}

func closeServices() {
	if services != nil && services.Close != nil {
		services.Close()
	}
	services = nil
}
