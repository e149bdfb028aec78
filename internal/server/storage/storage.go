// Package storage provides durable object storage for campaign media.
package storage

import "context"

// ObjectStore persists media blobs under hierarchical keys and serves them
// back via durable URLs. The engine only relies on Put returning a URL that
// carries no inline-payload marker; it never interprets object contents.
type ObjectStore interface {
	// Put uploads data under key and returns the durable URL for it.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// List returns every stored key beginning with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes one object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
