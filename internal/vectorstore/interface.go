// Package vectorstore is the optional downstream sink for chunk records:
// chunks with embeddings can be pushed straight into a vector database
// collection after export. Retrieval is out of scope for this tool.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks ragbuilder/internal/vectorstore VectorStore

import "context"

// Point is a vector point with its payload. The payload carries the chunk
// id, text, token count, and metadata; the point ID itself is a UUID.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// VectorStore defines the sink operations the ingest pipeline needs.
type VectorStore interface {
	// EnsureCollection creates the collection with the given vector size
	// if it does not exist, and validates the size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
