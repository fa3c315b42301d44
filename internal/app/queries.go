package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/scout/internal/adapters/cache"
	repository "github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

const defaultPageSize = 50

// Filter selects a page of the player listing.
type Filter struct {
	// Query matches name, club or nation, case-insensitively. Empty matches all.
	Query  string
	Offset int
	// Limit is the page size. Zero selects the default page size; values
	// above the configured maximum are capped.
	Limit int
}

// Page is one slice of the player listing.
type Page struct {
	Players []model.Player
	Total   int
	Offset  int
	Limit   int
}

// SimilarQuery is a similarity request as received from a caller.
type SimilarQuery struct {
	ReferenceID int
	// Attributes nil selects the default attributes. A non-nil empty slice
	// is passed through and rejected.
	Attributes []string
	Weights    []float64
	// Limit zero selects the default limit. Larger than the maximum is capped.
	Limit int
}

// Player returns the player with id from the current snapshot.
func (s *Service) Player(ctx context.Context, id int) (model.Player, error) {
	if s.snapshots.Snapshot() == nil {
		return model.Player{}, similarity.ErrDataUnavailable
	}
	p, err := s.snapshots.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Player{}, fmt.Errorf("%w: player %d", similarity.ErrNotFound, id)
	}
	return p, err
}

// Players lists the current snapshot in id order.
func (s *Service) Players(ctx context.Context, f Filter) (Page, error) {
	if f.Offset < 0 || f.Limit < 0 {
		return Page{}, fmt.Errorf("%w: offset %d limit %d", ErrInvalidPage, f.Offset, f.Limit)
	}
	pop := s.snapshots.Snapshot()
	if pop == nil {
		return Page{}, similarity.ErrDataUnavailable
	}
	limit := f.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	page := Page{Players: []model.Player{}, Offset: f.Offset, Limit: limit}
	pop.Each(func(p *model.Player) bool {
		if query != "" && !matches(p, query) {
			return true
		}
		if page.Total >= f.Offset && len(page.Players) < limit {
			page.Players = append(page.Players, *p)
		}
		page.Total++
		return true
	})
	return page, nil
}

func matches(p *model.Player, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Club), query) ||
		strings.Contains(strings.ToLower(p.Nation), query)
}

// Similar ranks the players closest to the reference player.
func (s *Service) Similar(ctx context.Context, q SimilarQuery) ([]similarity.Result, error) {
	start := time.Now()
	req := s.resolve(q)
	pop := s.snapshots.Snapshot()

	key := cache.KeyFor(pop.Generation(), req, req.Limit)
	if pop != nil {
		if res, ok := s.results.Get(key); ok {
			metrics.RecordSimilarityQuery("cached")
			metrics.RecordSimilarityLatency(float64(time.Since(start).Microseconds()) / 1000)
			return res, nil
		}
	}

	res, err := s.engine.FindSimilar(pop, req)
	elapsed := time.Since(start)
	metrics.RecordSimilarityLatency(float64(elapsed.Microseconds()) / 1000)
	if err != nil {
		metrics.RecordSimilarityQuery(outcome(err))
		s.logger.Debug(ctx, "similarity query rejected",
			logger.Int("reference", q.ReferenceID),
			logger.Error(err),
		)
		return nil, err
	}

	metrics.RecordSimilarityQuery("ok")
	metrics.RecordSimilarityScan(pop.Len()-1, len(res))
	s.results.Add(key, res)
	s.logger.Debug(ctx, "similarity query served",
		logger.Int("reference", q.ReferenceID),
		logger.Int("results", len(res)),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

// resolve applies the service defaults to q.
func (s *Service) resolve(q SimilarQuery) similarity.Request {
	req := similarity.Request{
		ReferenceID: q.ReferenceID,
		Attributes:  q.Attributes,
		Weights:     q.Weights,
		Limit:       q.Limit,
	}
	if req.Attributes == nil {
		req.Attributes = s.defaultAttributes
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if req.Limit > s.maxLimit {
		req.Limit = s.maxLimit
	}
	return req
}

// Compare lines up two players over names, or the default attributes when
// names is nil.
func (s *Service) Compare(ctx context.Context, idA, idB int, names []string) (similarity.Comparison, error) {
	if names == nil {
		names = s.defaultAttributes
	}
	return s.engine.Compare(s.snapshots.Snapshot(), idA, idB, names)
}

// Top returns the n best players by mean over names, or over the default
// attributes when names is nil. n is capped at the maximum limit.
func (s *Service) Top(ctx context.Context, n int, names []string) ([]similarity.Ranked, error) {
	if names == nil {
		names = s.defaultAttributes
	}
	if n == 0 {
		n = s.defaultLimit
	}
	if n > s.maxLimit {
		n = s.maxLimit
	}
	return s.engine.Top(s.snapshots.Snapshot(), n, names)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, similarity.ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, similarity.ErrNotFound):
		return "not_found"
	case errors.Is(err, similarity.ErrInvalidAttribute),
		errors.Is(err, similarity.ErrEmptyAttributeSet),
		errors.Is(err, similarity.ErrInvalidWeights),
		errors.Is(err, similarity.ErrInvalidLimit):
		return "invalid"
	default:
		return "error"
	}
}
