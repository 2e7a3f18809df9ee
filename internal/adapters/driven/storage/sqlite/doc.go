// Package sqlite provides a SQLite-based implementation of the chunk and
// interaction log stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database
// connection:
//
//   - ChunkStore: ingested chunks with their embeddings, in insertion order
//   - LogStore: the append-only interaction log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-agents/data/agents.db
//
// # Thread Safety
//
// All operations are thread-safe. Appends run in a transaction and SQLite
// serialises writers in WAL mode.
package sqlite
