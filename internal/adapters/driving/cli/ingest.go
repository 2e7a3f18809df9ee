package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-agents/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Add documents to the retrieval index",
	Long: `Extracts, chunks and indexes PDF, markdown and text files.
Directories are scanned recursively; hidden files are skipped.

With --watch, keeps running and ingests new or changed files in a single
directory until interrupted. Changed files are indexed again alongside
their earlier version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestWatch && len(args) != 1 {
		return errors.New("--watch takes exactly one directory")
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		results, err := ingestPath(cmd, svc.Ingest, path)
		if err != nil {
			return err
		}
		for _, r := range results {
			printIngestResult(cmd, r.Path, r.Result)
			if !r.Result.OK() {
				failed++
			}
		}
	}
	cmd.Printf("Index now holds %d chunks.\n", svc.Retrieval.Size())

	if ingestWatch {
		cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
		return filesystem.Run(cmd.Context(), filesystem.New(args[0], svc.Ingest.Supports), svc.Ingest)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to ingest", failed)
	}
	return nil
}

func ingestPath(cmd *cobra.Command, ingest driving.IngestService, path string) ([]driving.FileIngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot ingest %s: %w", path, err)
	}
	if info.IsDir() {
		results, err := ingest.IngestDir(cmd.Context(), path)
		if err != nil {
			return results, fmt.Errorf("ingest %s: %w", path, err)
		}
		if len(results) == 0 {
			cmd.Printf("No supported files in %s\n", path)
		}
		return results, nil
	}
	if ingestWatch {
		return nil, fmt.Errorf("--watch needs a directory, got file %s", path)
	}
	if !ingest.Supports(path) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}
	return []driving.FileIngestResult{{Path: path, Result: ingest.IngestFile(cmd.Context(), path)}}, nil
}

func printIngestResult(cmd *cobra.Command, path string, r domain.IngestResult) {
	if r.OK() {
		cmd.Printf("  ok    %s (%d chunks)\n", path, r.ChunksProcessed)
		return
	}
	cmd.Printf("  error %s: %s\n", path, r.Message)
}
