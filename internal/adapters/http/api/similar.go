package api

import (
	"context"
	"net/http"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/logger"
)

// SimilarityDependencies defines the ranking operations.
type SimilarityDependencies interface {
	Similar(ctx context.Context, q service.SimilarQuery) ([]similarity.Result, error)
	Compare(ctx context.Context, idA, idB int, names []string) (similarity.Comparison, error)
}

// SimilarHandler handles similarity and comparison requests.
type SimilarHandler struct {
	deps   SimilarityDependencies
	logger logger.Logger
}

// NewSimilarHandler creates a new similarity handler.
func NewSimilarHandler(deps SimilarityDependencies, log logger.Logger) *SimilarHandler {
	return &SimilarHandler{deps: deps, logger: log}
}

// HandleSimilar handles GET /api/players/{id}/similar requests.
func (h *SimilarHandler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	const op = "api.similar"
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	q := r.URL.Query()
	weights, err := queryWeights(q)
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	results, err := h.deps.Similar(r.Context(), service.SimilarQuery{
		ReferenceID: id,
		Attributes:  queryAttributes(q),
		Weights:     weights,
		Limit:       limit,
	})
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, similarJSON(results))
}

// HandleCompare handles GET /api/players/{a}/compare/{b} requests.
func (h *SimilarHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare"
	a, err := pathID(r, "a")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	b, err := pathID(r, "b")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	cmp, err := h.deps.Compare(r.Context(), a, b, queryAttributes(r.URL.Query()))
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, comparisonJSON(cmp))
}
