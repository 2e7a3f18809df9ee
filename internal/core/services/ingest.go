package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts text from files and feeds it to the retrieval index.
type IngestService struct {
	index       driving.RetrievalService
	uploads     driven.UploadStore
	extractors  map[string]driven.TextExtractor
	maxFileSize int64
}

// NewIngestService creates an ingest service. Later extractors win when
// two claim the same extension. The uploads parameter is optional (can be
// nil) for callers that only ingest files already on disk.
func NewIngestService(
	index driving.RetrievalService,
	uploads driven.UploadStore,
	maxFileSize int64,
	extractors ...driven.TextExtractor,
) *IngestService {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSize
	}

	byExt := make(map[string]driven.TextExtractor)
	for _, e := range extractors {
		for _, ext := range e.SupportedExtensions() {
			byExt[strings.ToLower(ext)] = e
		}
	}

	return &IngestService{
		index:       index,
		uploads:     uploads,
		extractors:  byExt,
		maxFileSize: maxFileSize,
	}
}

// Supports returns true if an extractor handles the file's extension.
func (s *IngestService) Supports(path string) bool {
	_, ok := s.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IngestFile extracts and ingests one file. The path is kept as the
// chunks' source.
func (s *IngestService) IngestFile(ctx context.Context, path string) domain.IngestResult {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := s.extractors[ext]
	if !ok {
		return extractionError(ext, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext))
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return extractionError(ext, err)
	}
	if strings.TrimSpace(text.Text) == "" {
		return extractionError(ext, fmt.Errorf("%w: no text found in %s", domain.ErrInvalidInput, filepath.Base(path)))
	}

	result := s.index.Ingest(ctx, text.Text, path)
	if result.OK() {
		logger.Info("%s", result.Message)
	} else {
		logger.Warn("Ingest %s: %s", path, result.Message)
	}
	return result
}

// IngestUpload saves an uploaded file and ingests it.
func (s *IngestService) IngestUpload(ctx context.Context, filename string, content []byte) (domain.IngestResult, error) {
	if int64(len(content)) > s.maxFileSize {
		return domain.IngestResult{}, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, len(content), s.maxFileSize)
	}
	if s.uploads == nil {
		return domain.IngestResult{}, errors.New("upload storage is not configured")
	}
	if !s.Supports(filename) {
		return domain.IngestResult{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(filename))
	}

	path, err := s.uploads.Save(ctx, filename, content, s.maxFileSize)
	if err != nil {
		return domain.IngestResult{}, err
	}
	return s.IngestFile(ctx, path), nil
}

// IngestDir walks dir and ingests every supported file in lexical order.
// Hidden files and directories are skipped.
func (s *IngestService) IngestDir(ctx context.Context, dir string) ([]driving.FileIngestResult, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.Supports(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	results := make([]driving.FileIngestResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, driving.FileIngestResult{Path: path, Result: s.IngestFile(ctx, path)})
	}
	return results, nil
}

func extractionError(ext string, err error) domain.IngestResult {
	kind := "document"
	if ext == ".pdf" {
		kind = "PDF"
	}
	return domain.IngestResult{
		Status:  domain.IngestStatusError,
		Message: fmt.Sprintf("Error processing %s: %v", kind, err),
	}
}
