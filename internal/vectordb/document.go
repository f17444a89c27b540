package vectordb

import "time"

// Document represents a piece of content stored and searched by embedding.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a document.
type DocumentMetadata struct {
	Source      string // path of the source file
	Element     int    // position of the element within the source
	ElementType string // structural kind (paragraph, heading, ...)
	ContentHash string // hash of the source file bytes
	IndexedAt   time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}
