package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/logger"
)

// PlayerDependencies defines the read operations on the player table.
type PlayerDependencies interface {
	Player(ctx context.Context, id int) (model.Player, error)
	Players(ctx context.Context, f service.Filter) (service.Page, error)
	Top(ctx context.Context, n int, names []string) ([]similarity.Ranked, error)
}

// PlayersHandler handles player lookups and listings.
type PlayersHandler struct {
	deps   PlayerDependencies
	logger logger.Logger
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies, log logger.Logger) *PlayersHandler {
	return &PlayersHandler{deps: deps, logger: log}
}

// HandleList handles GET /api/players?q=&offset=&limit= requests. The body
// is the page of players; the total match count is sent in X-Total-Count.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	q := r.URL.Query()
	offset, err := queryInt(q, "offset")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	page, err := h.deps.Players(r.Context(), service.Filter{Query: q.Get("q"), Offset: offset, Limit: limit})
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	w.Header().Set(totalCountHeader, strconv.Itoa(page.Total))
	writeJSON(w, http.StatusOK, playersJSON(page.Players))
}

// HandleGet handles GET /api/players/{id} requests.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Player(r.Context(), id)
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, playerJSON(p))
}

// HandleTop handles GET /api/players/top?n=&attributes= requests.
func (h *PlayersHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_players"
	q := r.URL.Query()
	n, err := queryInt(q, "n")
	if err != nil {
		writeFailure(w, r, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	ranked, err := h.deps.Top(r.Context(), n, queryAttributes(q))
	if err != nil {
		writeFailure(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rankedJSON(ranked))
}
