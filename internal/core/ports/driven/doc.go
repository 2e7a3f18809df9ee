// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns chunk and query text into vectors
//   - VectorIndex: Append-only positional vector storage with exact search
//   - ChunkStore: Durable mirror of ingested chunks
//   - LogStore: Append-only interaction log
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, routing uses keyword rules and answers are concatenated.
//   - SearchProvider: A missing web or paper provider turns that agent's
//     contribution into an error-flavoured summary.
//   - PromptStore: Without it, embedded default prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
