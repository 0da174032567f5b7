package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/repository"
	"datagraph-backend/pkg/api"
	"datagraph-backend/pkg/utils"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	categories repository.CategoryRepository
	collector  *observability.Collector
	logger     *zap.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories repository.CategoryRepository, collector *observability.Collector, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		collector:  collector,
		logger:     logger.Named("category_handler"),
	}
}

type categoryNameQuery struct {
	Name string `query:"name" validate:"notblank,max=200"`
}

// CreateCategory handles POST /category/create?name=...
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	q := categoryNameQuery{Name: r.URL.Query().Get("name")}
	if err := utils.ValidateStruct(q); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), q.Name)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.collector.RecordCreated(catalog.LabelCategory)
	api.Success(w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /category/delete?name=...
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	q := categoryNameQuery{Name: r.URL.Query().Get("name")}
	if err := utils.ValidateStruct(q); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if err := h.categories.Delete(r.Context(), q.Name); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.collector.RecordDeleted(catalog.LabelCategory)
	api.Success(w, http.StatusCreated, api.DeletedResponse{Deleted: catalog.NormalizeName(q.Name)})
}

// ListCategories handles GET /categories. Names are stored lower-case and
// returned in display form.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	names, err := h.categories.ListNames(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	display := make([]string, 0, len(names))
	for _, name := range names {
		display = append(display, catalog.DisplayName(name))
	}
	api.Success(w, http.StatusOK, display)
}
