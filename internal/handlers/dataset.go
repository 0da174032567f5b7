package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"datagraph-backend/internal/domain/catalog"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/repository"
	"datagraph-backend/pkg/api"
	"datagraph-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// DatasetHandler handles dataset-related HTTP requests.
type DatasetHandler struct {
	datasets  repository.DatasetRepository
	collector *observability.Collector
	logger    *zap.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(datasets repository.DatasetRepository, collector *observability.Collector, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		datasets:  datasets,
		collector: collector,
		logger:    logger.Named("dataset_handler"),
	}
}

// CreateDatasetRequest is the body of POST /dataset/create. ShareData defaults
// to true when omitted.
type CreateDatasetRequest struct {
	Name        string            `json:"name" validate:"notblank,max=200"`
	BelongsTo   string            `json:"belongs_to" validate:"notblank,max=200"`
	URL         string            `json:"url" validate:"max=2048"`
	Tags        map[string]string `json:"tags" validate:"omitempty,dive,keys,tagkey,endkeys"`
	User        string            `json:"user" validate:"max=200"`
	Description string            `json:"description" validate:"max=4000"`
	ShareData   *bool             `json:"share_data"`
}

// UpdateDatasetRequest is the body of PUT /dataset/update.
type UpdateDatasetRequest struct {
	Name string `json:"name" validate:"notblank"`
	User string `json:"user" validate:"notblank"`
}

type datasetQuery struct {
	Name string `query:"name" validate:"notblank"`
}

type datasetOwnerQuery struct {
	Name string `query:"name" validate:"notblank"`
	User string `query:"user" validate:"notblank"`
}

type userQuery struct {
	User string `query:"user" validate:"notblank"`
}

// GetDataset handles GET /dataset?name=...
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	q := datasetQuery{Name: r.URL.Query().Get("name")}
	if err := utils.ValidateStruct(q); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	props, err := h.datasets.Get(r.Context(), q.Name)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, props)
}

// CreateDataset handles POST /dataset/create.
func (h *DatasetHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if !h.decode(w, r, &req) {
		return
	}

	shared := true
	if req.ShareData != nil {
		shared = *req.ShareData
	}

	ds, err := h.datasets.Create(r.Context(), catalog.Dataset{
		Name:        req.Name,
		BelongsTo:   req.BelongsTo,
		URL:         req.URL,
		User:        req.User,
		Description: req.Description,
		ShareData:   shared,
		Tags:        req.Tags,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.collector.RecordCreated(catalog.LabelDataset)
	api.Success(w, http.StatusCreated, ds)
}

// UpdateDataset handles PUT /dataset/update by touching last_accessed.
func (h *DatasetHandler) UpdateDataset(w http.ResponseWriter, r *http.Request) {
	var req UpdateDatasetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.datasets.Touch(r.Context(), req.Name, req.User); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, api.TouchedResponse{
		Name: catalog.NormalizeName(req.Name),
		User: req.User,
	})
}

// DeleteDataset handles DELETE /dataset/delete?name=...&user=...
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	q := datasetOwnerQuery{
		Name: r.URL.Query().Get("name"),
		User: r.URL.Query().Get("user"),
	}
	if err := utils.ValidateStruct(q); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if err := h.datasets.Delete(r.Context(), q.Name, q.User); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.collector.RecordDeleted(catalog.LabelDataset)
	api.Success(w, http.StatusCreated, api.DeletedResponse{Deleted: catalog.NormalizeName(q.Name)})
}

// ListUserDatasets handles GET /datasets?user=...
func (h *DatasetHandler) ListUserDatasets(w http.ResponseWriter, r *http.Request) {
	q := userQuery{User: r.URL.Query().Get("user")}
	if err := utils.ValidateStruct(q); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	mappings, err := h.datasets.ListByUser(r.Context(), q.User)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, mappings)
}

// ListAllDatasets handles GET /datasets/all.
func (h *DatasetHandler) ListAllDatasets(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.datasets.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, mappings)
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (h *DatasetHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		validationError(w, r, h.logger, "invalid request body")
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		handleServiceError(w, r, h.logger, err)
		return false
	}
	return true
}
