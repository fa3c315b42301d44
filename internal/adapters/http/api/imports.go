package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
)

const maxImportBody = 1 << 16

// ImportDependencies defines the import operations.
type ImportDependencies interface {
	Import(ctx context.Context, path string) (model.ImportResult, error)
	SubmitImport(ctx context.Context, path string) (model.ImportJob, error)
	ImportStatus(ctx context.Context, id string) (model.ImportStatus, error)
}

// ImportHandler handles dataset reloads.
type ImportHandler struct {
	deps   ImportDependencies
	logger logger.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(deps ImportDependencies, log logger.Logger) *ImportHandler {
	return &ImportHandler{deps: deps, logger: log}
}

// HandleSubmit handles POST /api/import requests. The body is optional; an
// absent path imports the configured dataset.
func (h *ImportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_import"
	var req importRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxImportBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	job, err := h.deps.SubmitImport(r.Context(), req.Path)
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/import/"+job.ID)
	writeJSON(w, http.StatusAccepted, importStatusJSON(model.ImportStatus{Job: job, State: model.ImportQueued}))
}

// HandleStatus handles GET /api/import/{id} requests.
func (h *ImportHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_status"
	st, err := h.deps.ImportStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, importStatusJSON(st))
}

// HandleImportData handles GET /api/import-data requests: a synchronous
// reload of the configured dataset.
func (h *ImportHandler) HandleImportData(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_data"
	res, err := h.deps.Import(r.Context(), "")
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, importDataResponse{
		Message:    fmt.Sprintf("Imported %d players successfully", res.Imported),
		Imported:   res.Imported,
		Skipped:    res.Skipped,
		Generation: res.Generation,
	})
}
