// Command sercha-agents answers questions by routing them to document,
// arXiv and web search agents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-agents/internal/app"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/services"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	var prompts driven.PromptStore
	if store, err := file.NewPromptStore(""); err != nil {
		logger.Warn("Using built-in prompts: %v", err)
	} else {
		prompts = store
	}

	cli.SetVersion(version)
	cli.Configure(cli.Config{
		Settings:  services.NewSettingsService(configStore, os.Getenv),
		Validator: ai.NewConfigValidator(),
		Build: func(ctx context.Context, settings domain.AppSettings) (*cli.Services, error) {
			a, err := app.Build(ctx, app.Options{Settings: settings, Prompts: prompts})
			if err != nil {
				return nil, err
			}
			return &cli.Services{
				Ask:       a.Ask,
				Logs:      a.Logs,
				Retrieval: a.Retrieval,
				Ingest:    a.Ingest,
				Settings:  settings,
				Providers: a.Providers,
				Warnings:  a.Warnings,
				Close:     a.Close,
			}, nil
		},
	})

	return cli.Execute(ctx)
}
