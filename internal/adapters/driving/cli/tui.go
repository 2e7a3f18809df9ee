package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Ask questions and read the merged answer, search ingested documents
directly, or browse recent interactions.

Controls:
  ↑/k, ↓/j - Navigate / scroll
  Enter    - Submit / Select
  n        - New question or search
  Esc      - Back to menu
  ctrl+c   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(svc.Ask, svc.Retrieval, svc.Logs))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Log lines would tear the alternate screen.
	prev := logger.Writer()
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(prev)

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
