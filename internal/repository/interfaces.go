// Package repository translates catalog operations into Cypher statements run
// against a graphstore.Store.
//
// Every method issues exactly one statement. Results that come back empty where
// a row was required are reported as not-found errors from pkg/errors, so the
// HTTP layer can tell "nothing matched" apart from a failing database.
package repository

import (
	"context"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/tree"
)

// CategoryRepository manages Category nodes hanging from Base.
type CategoryRepository interface {
	// Create upserts Base and the category and attaches one to the other.
	Create(ctx context.Context, name string) (*catalog.Category, error)
	// Delete removes the category and its edges.
	Delete(ctx context.Context, name string) error
	// ListNames returns stored (lower-case) category names in name order.
	ListNames(ctx context.Context) ([]string, error)
}

// DatasetRepository manages Dataset nodes attached to categories.
type DatasetRepository interface {
	Create(ctx context.Context, ds catalog.Dataset) (*catalog.Dataset, error)
	// Get returns the dataset's stored properties.
	Get(ctx context.Context, name string) (map[string]interface{}, error)
	// Touch sets last_accessed on the dataset owned by user.
	Touch(ctx context.Context, name, user string) error
	Delete(ctx context.Context, name, user string) error
	// ListByUser returns the tag mappings of the datasets owned by user.
	ListByUser(ctx context.Context, user string) ([]map[string]interface{}, error)
	// ListAll returns the tag mappings of every dataset.
	ListAll(ctx context.Context) ([]map[string]interface{}, error)
}

// TreeReader loads the edge list the tree builder consumes.
type TreeReader interface {
	TreeRows(ctx context.Context) ([]tree.Row, error)
}
