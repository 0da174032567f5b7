package repository

import (
	"context"

	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/tree"
)

// Neo4jTreeReader implements TreeReader.
type Neo4jTreeReader struct {
	store graphstore.Store
}

// NewTreeReader creates a tree reader on store.
func NewTreeReader(store graphstore.Store) *Neo4jTreeReader {
	return &Neo4jTreeReader{store: store}
}

// TreeRows implements TreeReader.
func (r *Neo4jTreeReader) TreeRows(ctx context.Context) ([]tree.Row, error) {
	records, err := r.store.Read(ctx, treeQuery, nil)
	if err != nil {
		return nil, storeError(err, "load tree")
	}

	rows := make([]tree.Row, len(records))
	for i, rec := range records {
		rows[i] = tree.Row(rec)
	}
	return rows, nil
}
