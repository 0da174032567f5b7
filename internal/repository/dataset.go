package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/graphstore"
	appErrors "datagraph-backend/pkg/errors"
)

// Neo4jDatasetRepository implements DatasetRepository.
type Neo4jDatasetRepository struct {
	store  graphstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewDatasetRepository creates a dataset repository on store.
func NewDatasetRepository(store graphstore.Store, logger *zap.Logger) *Neo4jDatasetRepository {
	return &Neo4jDatasetRepository{
		store:  store,
		logger: logger.Named("datasets"),
		now:    time.Now,
	}
}

func (r *Neo4jDatasetRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// Create implements DatasetRepository. The category must already exist.
func (r *Neo4jDatasetRepository) Create(ctx context.Context, ds catalog.Dataset) (*catalog.Dataset, error) {
	ds.Name = catalog.NormalizeName(ds.Name)
	ds.BelongsTo = catalog.NormalizeName(ds.BelongsTo)
	if ds.Name == "" || ds.BelongsTo == "" {
		return nil, appErrors.NewValidation("dataset name and belongs_to are required")
	}

	tags := make(map[string]interface{}, len(ds.Tags))
	for k, v := range ds.Tags {
		if !catalog.ValidTagKey(k) {
			return nil, appErrors.NewValidation("invalid tag key '" + k + "'")
		}
		tags[k] = v
	}

	ds.LastAccessed = r.timestamp()
	records, err := r.store.Write(ctx, createDatasetQuery, map[string]interface{}{
		"name":        ds.Name,
		"belongs_to":  ds.BelongsTo,
		"url":         ds.URL,
		"user":        optional(ds.User),
		"description": optional(ds.Description),
		"share_data":  ds.ShareData,
		"now":         ds.LastAccessed,
		"tags":        tags,
	})
	if err != nil {
		return nil, storeError(err, "create dataset")
	}
	if len(records) == 0 {
		return nil, notFound("category", ds.BelongsTo)
	}

	r.logger.Info("dataset created",
		zap.String("name", ds.Name),
		zap.String("belongs_to", ds.BelongsTo),
		zap.Int("tags", len(tags)),
	)
	return &ds, nil
}

// Get implements DatasetRepository.
func (r *Neo4jDatasetRepository) Get(ctx context.Context, name string) (map[string]interface{}, error) {
	key := catalog.NormalizeName(name)
	if key == "" {
		return nil, appErrors.NewValidation("dataset name is required")
	}

	records, err := r.store.Read(ctx, getDatasetQuery, map[string]interface{}{"name": key})
	if err != nil {
		return nil, storeError(err, "get dataset")
	}
	if len(records) == 0 {
		return nil, notFound("dataset", key)
	}
	props := records[0].Map("props")
	if props == nil {
		return nil, notFound("dataset", key)
	}
	return props, nil
}

// Touch implements DatasetRepository.
func (r *Neo4jDatasetRepository) Touch(ctx context.Context, name, user string) error {
	key := catalog.NormalizeName(name)
	if key == "" || user == "" {
		return appErrors.NewValidation("dataset name and user are required")
	}

	records, err := r.store.Write(ctx, touchDatasetQuery, map[string]interface{}{
		"name": key,
		"user": user,
		"now":  r.timestamp(),
	})
	if err != nil {
		return storeError(err, "update dataset")
	}
	if len(records) == 0 {
		return notFound("dataset", key)
	}
	return nil
}

// Delete implements DatasetRepository.
func (r *Neo4jDatasetRepository) Delete(ctx context.Context, name, user string) error {
	key := catalog.NormalizeName(name)
	if key == "" || user == "" {
		return appErrors.NewValidation("dataset name and user are required")
	}

	records, err := r.store.Write(ctx, deleteDatasetQuery, map[string]interface{}{
		"name": key,
		"user": user,
	})
	if err != nil {
		return storeError(err, "delete dataset")
	}
	if len(records) == 0 || records[0].Int("deleted") == 0 {
		return notFound("dataset", key)
	}

	r.logger.Info("dataset deleted", zap.String("name", key), zap.String("user", user))
	return nil
}

// ListByUser implements DatasetRepository.
func (r *Neo4jDatasetRepository) ListByUser(ctx context.Context, user string) ([]map[string]interface{}, error) {
	if user == "" {
		return nil, appErrors.NewValidation("user is required")
	}

	records, err := r.store.Read(ctx, listUserDatasetsQuery, map[string]interface{}{"user": user})
	if err != nil {
		return nil, storeError(err, "list user datasets")
	}
	return tagMappings(records), nil
}

// ListAll implements DatasetRepository.
func (r *Neo4jDatasetRepository) ListAll(ctx context.Context) ([]map[string]interface{}, error) {
	records, err := r.store.Read(ctx, listAllDatasetsQuery, nil)
	if err != nil {
		return nil, storeError(err, "list datasets")
	}
	return tagMappings(records), nil
}

func tagMappings(records []graphstore.Record) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		props := rec.Map("props")
		if props == nil {
			continue
		}
		out = append(out, catalog.TagMapping(props))
	}
	return out
}

// optional maps "" to nil so Cypher's SET removes the property instead of
// storing an empty string.
func optional(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
