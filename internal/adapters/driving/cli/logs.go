package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logsLimit int
	logsJSON  bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent interactions",
	Long:  `Prints the most recent logged questions with their routing decision and answer.`,
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 10, "number of entries to show (0 = all)")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "output entries as JSON")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	entries, err := svc.Logs.Recent(cmd.Context(), logsLimit)
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}

	if logsJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal logs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No interactions logged yet.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("%s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Input)
		cmd.Printf("  Decision: %s\n", e.Decision)
		cmd.Printf("  Documents: %d\n", len(e.DocumentsRetrieved))
		cmd.Printf("  Answer: %s\n", snippet(e.FinalAnswer, snippetLength))
		cmd.Println()
	}
	return nil
}
