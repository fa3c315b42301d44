package probe

import (
	"fmt"
	"math"
)

// verifyResults checks one similarity response for reference id ref.
// It returns one message per broken rule.
func verifyResults(ref, limit int, results []entry) []string {
	var out []string
	if len(results) > limit {
		out = append(out, fmt.Sprintf("player %d: %d results for limit %d", ref, len(results), limit))
	}
	for i, r := range results {
		if r.ID == ref {
			out = append(out, fmt.Sprintf("player %d: reference returned at position %d", ref, i))
		}
		if r.Distance < 0 || math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0) {
			out = append(out, fmt.Sprintf("player %d: bad distance %v for %d", ref, r.Distance, r.ID))
		}
		if i == 0 {
			continue
		}
		prev := results[i-1]
		switch {
		case r.Distance < prev.Distance:
			out = append(out, fmt.Sprintf("player %d: distance decreases at position %d", ref, i))
		case r.Distance == prev.Distance && r.ID <= prev.ID:
			out = append(out, fmt.Sprintf("player %d: tie at position %d not in id order", ref, i))
		}
	}
	return out
}
