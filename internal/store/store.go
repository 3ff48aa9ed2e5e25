package store

import (
	"encoding/json"
	"errors"
)

// ErrUnavailable wraps connectivity failures: the store is unreachable or
// rejected the request outright. Callers treat this as fatal to the current
// operation, never as a per-document data problem.
var ErrUnavailable = errors.New("document store unavailable")

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Hit is one matching document from a search.
type Hit struct {
	ID     string
	Source json.RawMessage
}

// Bucket is one distinct value from a terms aggregation.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

// SearchResult is a decoded search response page.
type SearchResult struct {
	Total        int64
	Hits         []Hit
	Aggregations map[string][]Bucket
}

// BulkItem is the per-document outcome of one bulk operation, aligned by
// position with the submitted documents.
type BulkItem struct {
	Status      int
	Failed      bool
	ErrorType   string
	ErrorReason string
}
