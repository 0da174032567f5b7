package repository

import (
	"context"

	"go.uber.org/zap"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/graphstore"
	appErrors "datagraph-backend/pkg/errors"
)

// Neo4jCategoryRepository implements CategoryRepository.
type Neo4jCategoryRepository struct {
	store  graphstore.Store
	logger *zap.Logger
}

// NewCategoryRepository creates a category repository on store.
func NewCategoryRepository(store graphstore.Store, logger *zap.Logger) *Neo4jCategoryRepository {
	return &Neo4jCategoryRepository{store: store, logger: logger.Named("categories")}
}

// Create implements CategoryRepository.
func (r *Neo4jCategoryRepository) Create(ctx context.Context, name string) (*catalog.Category, error) {
	key := catalog.NormalizeName(name)
	if key == "" {
		return nil, appErrors.NewValidation("category name is required")
	}
	if catalog.IsRootName(key) {
		return nil, appErrors.NewValidation("category name is reserved")
	}

	records, err := r.store.Write(ctx, createCategoryQuery, map[string]interface{}{
		"root": catalog.RootName,
		"name": key,
	})
	if err != nil {
		return nil, storeError(err, "create category")
	}
	if len(records) == 0 {
		return nil, emptyResult("create category")
	}

	rec := records[0]
	shareValue, _ := rec.Value("share_data")
	r.logger.Info("category created", zap.String("name", key))
	return &catalog.Category{
		Name:      rec.String("name"),
		ShareData: catalog.Shared(shareValue),
	}, nil
}

// Delete implements CategoryRepository.
func (r *Neo4jCategoryRepository) Delete(ctx context.Context, name string) error {
	key := catalog.NormalizeName(name)
	if key == "" {
		return appErrors.NewValidation("category name is required")
	}

	records, err := r.store.Write(ctx, deleteCategoryQuery, map[string]interface{}{"name": key})
	if err != nil {
		return storeError(err, "delete category")
	}
	if len(records) == 0 || records[0].Int("deleted") == 0 {
		return notFound("category", key)
	}

	r.logger.Info("category deleted", zap.String("name", key))
	return nil
}

// ListNames implements CategoryRepository.
func (r *Neo4jCategoryRepository) ListNames(ctx context.Context) ([]string, error) {
	records, err := r.store.Read(ctx, listCategoriesQuery, nil)
	if err != nil {
		return nil, storeError(err, "list categories")
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		if name := rec.String("name"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
