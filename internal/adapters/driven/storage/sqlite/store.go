package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// schema holds the versioned .up.sql and .down.sql files.
//
//go:embed migrations/*.sql
var schema embed.FS

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "agents.db"

// Store is a SQLite database holding chunks and interaction logs.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-agents/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-agents", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer avoids SQLITE_BUSY between concurrent appends.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	migrations, err := fs.Sub(schema, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening migrations: %w", err)
	}
	if err := s.migrate(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// LogStore returns a LogStore backed by this store.
func (s *Store) LogStore() driven.LogStore {
	return &logStore{store: s}
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_init.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Append stores chunks and their embeddings in one transaction.
func (c *chunkStore) Append(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_title, source, sequence_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.SourceTitle, chunk.Source, chunk.SequenceIndex,
			chunk.Text, float32SliceToBytes(embeddings[i])); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// List returns every chunk in insertion order.
func (c *chunkStore) List(ctx context.Context) ([]driven.StoredChunk, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, source_title, source, sequence_index, content, embedding
		FROM chunks
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var stored []driven.StoredChunk
	for rows.Next() {
		var (
			sc        driven.StoredChunk
			embedding []byte
		)
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.SourceTitle, &sc.Chunk.Source, &sc.Chunk.SequenceIndex,
			&sc.Chunk.Text, &embedding); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		sc.Embedding = bytesToFloat32Slice(embedding)
		stored = append(stored, sc)
	}
	return stored, rows.Err()
}

// Count returns the number of stored chunks.
func (c *chunkStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Delete removes the chunks with the given IDs in one transaction.
func (c *chunkStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk delete: %w", err)
	}
	return nil
}

// ==================== Log Store ====================

// logStore implements driven.LogStore.
type logStore struct {
	store *Store
}

var _ driven.LogStore = (*logStore)(nil)

// Append adds one interaction log entry.
func (l *logStore) Append(ctx context.Context, entry domain.LogEntry) error {
	agents, err := json.Marshal(nonNil(entry.AgentsCalled))
	if err != nil {
		return fmt.Errorf("marshalling agents: %w", err)
	}
	docs, err := json.Marshal(nonNil(entry.DocumentsRetrieved))
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO interaction_logs (input, decision, agents_called, documents_retrieved, final_answer, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Input, entry.Decision, string(agents), string(docs), entry.FinalAnswer,
		ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

// ListAll returns every entry in insertion order.
func (l *logStore) ListAll(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT input, decision, agents_called, documents_retrieved, final_answer, timestamp
		FROM interaction_logs
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		var (
			entry       domain.LogEntry
			agents, doc string
			ts          string
		)
		if err := rows.Scan(&entry.Input, &entry.Decision, &agents, &doc, &entry.FinalAnswer, &ts); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		if err := json.Unmarshal([]byte(agents), &entry.AgentsCalled); err != nil {
			return nil, fmt.Errorf("unmarshalling agents: %w", err)
		}
		if err := json.Unmarshal([]byte(doc), &entry.DocumentsRetrieved); err != nil {
			return nil, fmt.Errorf("unmarshalling documents: %w", err)
		}
		if entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ==================== Helpers ====================

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// float32SliceToBytes encodes a vector as little-endian float32s.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
