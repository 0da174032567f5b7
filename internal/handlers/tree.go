package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/repository"
	"datagraph-backend/internal/tree"
	"datagraph-backend/pkg/api"
	appErrors "datagraph-backend/pkg/errors"
)

// TreeHandler serves the reconstructed category/dataset tree.
type TreeHandler struct {
	reader    repository.TreeReader
	options   tree.Options
	collector *observability.Collector
	logger    *zap.Logger
}

// NewTreeHandler creates a tree handler that builds with tree.Latest.
func NewTreeHandler(reader repository.TreeReader, collector *observability.Collector, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		reader:    reader,
		options:   tree.Latest,
		collector: collector,
		logger:    logger.Named("tree_handler"),
	}
}

// GetTree handles GET /all.
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reader.TreeRows(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	entries, err := tree.Build(rows, h.options)
	if err != nil {
		handleServiceError(w, r, h.logger, appErrors.NewInternal("build tree", err))
		return
	}

	h.collector.RecordTree(len(entries))
	api.Success(w, http.StatusOK, entries)
}
