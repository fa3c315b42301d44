// Package similarity ranks players by weighted Euclidean distance over a
// chosen subset of numeric attributes.
//
// The engine is a pure function of its inputs: it never mutates the
// population, never logs and holds no state between calls, so any number of
// queries may run in parallel against the same snapshot.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
)

// DefaultLimit is the number of results returned when a request sets none.
const DefaultLimit = 10

// Request describes one nearest-neighbour query.
type Request struct {
	ReferenceID int
	// Attributes are the dimensions of the distance. A repeated name
	// contributes once per occurrence.
	Attributes []string
	// Weights, when set, holds one positive multiplier per attribute.
	Weights []float64
	// Limit caps the result size. Zero selects DefaultLimit.
	Limit int
}

// Result is one ranked candidate.
type Result struct {
	Player   model.Player
	Distance float64
}

// Finder is the contract consumed by the application layer.
type Finder interface {
	FindSimilar(pop *model.Population, req Request) ([]Result, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDefaultLimit overrides the limit used when a request sets none.
func WithDefaultLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// WithSchema replaces the allow-list used to validate attribute names.
func WithSchema(known func(string) bool) Option {
	return func(e *Engine) {
		if known != nil {
			e.known = known
		}
	}
}

// Engine implements Finder.
type Engine struct {
	defaultLimit int
	known        func(string) bool
}

// NewEngine creates an engine validating names against the attribute schema.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		defaultLimit: DefaultLimit,
		known:        attribute.Known,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindSimilar returns the players closest to the reference, nearest first.
// Equal distances are ordered by ascending id. Candidates lacking a numeric
// value for any requested attribute are left out.
func (e *Engine) FindSimilar(pop *model.Population, req Request) ([]Result, error) {
	if pop.Len() == 0 {
		return nil, ErrDataUnavailable
	}
	weights, limit, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	ref, ok := pop.Get(req.ReferenceID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, req.ReferenceID)
	}
	refValues := make([]float64, len(req.Attributes))
	for i, name := range req.Attributes {
		v, ok := ref.Value(name)
		if !ok {
			return nil, notNumeric(name, ref.ID)
		}
		refValues[i] = v
	}

	results := make([]Result, 0, pop.Len()-1)
	pop.Each(func(cand *model.Player) bool {
		if cand.ID == ref.ID {
			return true
		}
		if d, ok := distance(refValues, cand, req.Attributes, weights); ok {
			results = append(results, Result{Player: *cand, Distance: d})
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Player.ID < results[j].Player.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// validate checks the request shape and resolves default weights and limit.
func (e *Engine) validate(req Request) ([]float64, int, error) {
	if len(req.Attributes) == 0 {
		return nil, 0, ErrEmptyAttributeSet
	}

	weights := req.Weights
	if weights == nil {
		weights = make([]float64, len(req.Attributes))
		for i := range weights {
			weights[i] = 1
		}
	} else {
		if len(weights) != len(req.Attributes) {
			return nil, 0, fmt.Errorf("%w: got %d weights for %d attributes", ErrInvalidWeights, len(weights), len(req.Attributes))
		}
		for i, w := range weights {
			if !(w > 0) || math.IsInf(w, 0) {
				return nil, 0, fmt.Errorf("%w: weight %v for %s must be a positive number", ErrInvalidWeights, w, req.Attributes[i])
			}
		}
	}

	limit := req.Limit
	switch {
	case limit < 0:
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	case limit == 0:
		limit = e.defaultLimit
	}

	for _, name := range req.Attributes {
		if !e.known(name) {
			return nil, 0, unknownAttribute(name)
		}
	}
	return weights, limit, nil
}

// distance computes sqrt(sum w_i * (ref_i - cand_i)^2). It reports false when
// the candidate lacks any of the attributes or the sum overflows float64.
func distance(ref []float64, cand *model.Player, names []string, weights []float64) (float64, bool) {
	var sum float64
	for i, name := range names {
		v, ok := cand.Value(name)
		if !ok {
			return 0, false
		}
		d := ref[i] - v
		sum += weights[i] * d * d
	}
	if math.IsInf(sum, 0) {
		return 0, false
	}
	return math.Sqrt(sum), true
}
