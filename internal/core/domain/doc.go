// Package domain defines the core business entities for sercha-agents.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A searchable window of words cut from an ingested document
//   - Decision: Which agents a question is routed to, and why
//   - AgentResult: The normalised output of one agent
//   - FinalAnswer: The synthesised answer returned to the caller
//   - LogEntry: The append-only audit record of one question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
