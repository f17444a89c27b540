package vectordb

import (
	"context"
	"errors"
)

// ErrEmptyIndex is returned when an index is built from zero documents.
var ErrEmptyIndex = errors.New("cannot build index from zero documents")

// VectorStore defines the interface for storing and searching documents
// by embedding similarity.
type VectorStore interface {
	// AddDocuments adds or updates documents in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search embeds the query text and returns up to limit documents
	// ranked nearest-first. limit must be >= 1; results are capped at
	// the store size, never an error for limit > size.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
