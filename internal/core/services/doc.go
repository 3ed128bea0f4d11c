// Package services implements the core use cases: ingestion with
// conflict resolution, index maintenance, and grounded question
// answering. Services depend only on ports, never on adapters.
package services
