// Package hugot provides an in-process embedding service that runs a
// sentence-transformer ONNX model through the hugot pure-Go backend.
package hugot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel        = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultModelDir     = "models"
	DefaultOnnxFilePath = "onnx/model.onnx"
	DefaultBatchSize    = 32
)

// Config holds configuration for the hugot embedding service.
type Config struct {
	// Model is a Hugging Face model name (default: all-MiniLM-L6-v2).
	Model string

	// ModelDir is where models are downloaded (default: ./models).
	ModelDir string

	// Dimensions is the expected vector size.
	Dimensions int

	// BatchSize caps the texts per pipeline run (default: 32).
	BatchSize int
}

// EmbeddingService runs a feature-extraction pipeline in-process.
type EmbeddingService struct {
	mu         sync.Mutex
	session    *hugot.Session
	pipeline   *pipelines.FeatureExtractionPipeline
	model      string
	dimensions int
	batchSize  int
}

// NewEmbeddingService downloads the model if needed and starts a session.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = DefaultModelDir
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	modelPath, err := PrepareModel(cfg.Model, cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create embedding pipeline: %w (cleanup: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create embedding pipeline: %w", err)
	}

	return &EmbeddingService{
		session:    session,
		pipeline:   pipeline,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}, nil
}

// ModelPath returns the directory a model is stored under inside dir.
func ModelPath(model, dir string) string {
	return filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))
}

// PrepareModel returns the local path of model, downloading it into dir
// when it is not already present.
func PrepareModel(model, dir string) (string, error) {
	path := ModelPath(model, dir)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat model: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}

	logger.Info("Downloading embedding model %s to %s", model, dir)
	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = DefaultOnnxFilePath
	downloaded, err := hugot.DownloadModel(model, dir, opts)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", model, err)
	}
	return downloaded, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch runs the pipeline over texts in groups of BatchSize.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipeline == nil {
		return nil, fmt.Errorf("%w: hugot session closed", domain.ErrEmbeddingUnavailable)
	}

	for start := 0; start < len(texts); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+s.batchSize, len(texts))

		result, err := s.pipeline.RunPipeline(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("run embedding pipeline: %w", err)
		}
		if len(result.Embeddings) != end-start {
			return nil, fmt.Errorf("hugot: got %d embeddings for %d inputs", len(result.Embeddings), end-start)
		}
		for _, v := range result.Embeddings {
			if len(v) != s.dimensions {
				return nil, fmt.Errorf("%w: model %s produced %d dimensions, expected %d",
					domain.ErrDimensionMismatch, s.model, len(v), s.dimensions)
			}
		}
		out = append(out, result.Embeddings...)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping reports whether the session is still open.
func (s *EmbeddingService) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return fmt.Errorf("%w: hugot session closed", domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// Close destroys the hugot session.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	s.pipeline = nil
	return err
}
