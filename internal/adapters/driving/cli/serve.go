package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-agents/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

var (
	serveAddr      string
	serveNoSamples bool
	serveWatch     string
	serveMCP       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API:

  POST /ask         {"question": "...", "context": "..."}
  POST /upload_pdf  multipart field "file"
  GET  /logs        every logged interaction
  GET  /healthz     index size and provider availability
  ANY  /mcp         MCP over streamable HTTP (with --mcp)

Files in the sample directory (ingest.sample_dir) are ingested at startup.
A mismatch between the embedding model and the vector index is fatal.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr setting)")
	serveCmd.Flags().BoolVar(&serveNoSamples, "no-samples", false, "skip ingesting the sample directory")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "also ingest new files appearing in this directory")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve the MCP endpoint at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger.SetTimestamps(true)

	svc, err := loadServices(cmd)
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return fmt.Errorf("fatal configuration error: %w", err)
		}
		return err
	}
	for _, w := range svc.Warnings {
		logger.Warn("%s", w)
	}

	settings := svc.Settings
	if !serveNoSamples {
		ingestSamples(cmd, svc, settings.Server.SampleDocsDir)
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}
	cfg := httpapi.Config{Addr: addr, MaxFileSize: settings.Server.MaxFileSize}
	if serveMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{
			Ask:       svc.Ask,
			Retrieval: svc.Retrieval,
			Ingest:    svc.Ingest,
			Logs:      svc.Logs,
		})
		if err != nil {
			return err
		}
		cfg.Extra = map[string]http.Handler{mcp.Path: mcpServer.Handler()}
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ask:       svc.Ask,
		Ingest:    svc.Ingest,
		Logs:      svc.Logs,
		Retrieval: svc.Retrieval,
		Providers: svc.Providers,
	}, cfg)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return server.Run(ctx) })
	if serveWatch != "" {
		g.Go(func() error {
			return filesystem.Run(ctx, filesystem.New(serveWatch, svc.Ingest.Supports), svc.Ingest)
		})
	}

	cmd.Printf("Serving on %s with %d chunks indexed\n", server.Addr(), svc.Retrieval.Size())
	return g.Wait()
}

// ingestSamples indexes the sample directory if it exists. Failures are
// logged and never stop the server.
func ingestSamples(cmd *cobra.Command, svc *Services, dir string) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Debug("No sample directory at %s", dir)
		return
	}

	results, err := svc.Ingest.IngestDir(cmd.Context(), dir)
	if err != nil {
		logger.Warn("Sample ingestion stopped: %v", err)
	}
	ok := 0
	for _, r := range results {
		if r.Result.OK() {
			ok++
		}
	}
	logger.Info("Ingested %d of %d sample files from %s", ok, len(results), dir)
}
