// Package domain contains the core business entities and rules for
// document ingestion, corpus management and grounded question answering.
// It has no dependencies on infrastructure concerns.
package domain
