// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, external model runtimes,
// recognition, and the vector index.
package driven
