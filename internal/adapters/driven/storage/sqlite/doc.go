// Package sqlite provides SQLite-backed persistence for the corpus
// index and the retrieval units, using embedded schema migrations.
package sqlite
