package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/scout/internal/domain/model"
)

// AttributeDiff is one row of a head-to-head comparison.
type AttributeDiff struct {
	Name    string
	A       float64
	B       float64
	Diff    float64 // B - A
	Missing bool    // true when either side has no value
}

// Comparison is the result of Compare.
type Comparison struct {
	A          model.Player
	B          model.Player
	Attributes []AttributeDiff
	// Distance is the unweighted Euclidean distance over the attributes
	// both players carry.
	Distance float64
}

// Compare lines up two players attribute by attribute.
func (e *Engine) Compare(pop *model.Population, idA, idB int, names []string) (Comparison, error) {
	if pop.Len() == 0 {
		return Comparison{}, ErrDataUnavailable
	}
	if len(names) == 0 {
		return Comparison{}, ErrEmptyAttributeSet
	}
	for _, name := range names {
		if !e.known(name) {
			return Comparison{}, unknownAttribute(name)
		}
	}
	a, ok := pop.Get(idA)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %d", ErrNotFound, idA)
	}
	b, ok := pop.Get(idB)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %d", ErrNotFound, idB)
	}

	out := Comparison{A: *a, B: *b, Attributes: make([]AttributeDiff, 0, len(names))}
	var sum float64
	for _, name := range names {
		av, aok := a.Value(name)
		bv, bok := b.Value(name)
		row := AttributeDiff{Name: name}
		if !aok || !bok {
			row.Missing = true
			if aok {
				row.A = av
			}
			if bok {
				row.B = bv
			}
			out.Attributes = append(out.Attributes, row)
			continue
		}
		row.A, row.B, row.Diff = av, bv, bv-av
		sum += row.Diff * row.Diff
		out.Attributes = append(out.Attributes, row)
	}
	out.Distance = math.Sqrt(sum)
	return out, nil
}

// Ranked is one entry of a Top listing.
type Ranked struct {
	Player model.Player
	Score  float64
}

// Top returns the n players with the highest mean over names, ties by
// ascending id. Players missing any of the attributes are skipped.
func (e *Engine) Top(pop *model.Population, n int, names []string) ([]Ranked, error) {
	if pop.Len() == 0 {
		return nil, ErrDataUnavailable
	}
	if len(names) == 0 {
		return nil, ErrEmptyAttributeSet
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	for _, name := range names {
		if !e.known(name) {
			return nil, unknownAttribute(name)
		}
	}

	ranked := make([]Ranked, 0, pop.Len())
	pop.Each(func(p *model.Player) bool {
		var sum float64
		for _, name := range names {
			v, ok := p.Value(name)
			if !ok {
				return true
			}
			sum += v
		}
		ranked = append(ranked, Ranked{Player: *p, Score: sum / float64(len(names))})
		return true
	})

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Player.ID < ranked[j].Player.ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
