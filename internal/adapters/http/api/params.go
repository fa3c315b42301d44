package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scout/internal/domain/attribute"
)

// pathID reads an integer player id from the named path parameter.
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid player id %q", raw)
	}
	return id, nil
}

// queryInt reads an optional integer parameter. Absent means zero.
func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

// queryAttributes returns nil when the parameter is absent so the service
// applies its defaults. A present but blank list yields an empty, non-nil
// slice which is rejected downstream.
func queryAttributes(q url.Values) []string {
	if !q.Has("attributes") {
		return nil
	}
	names := attribute.Parse(q.Get("attributes"))
	if names == nil {
		return []string{}
	}
	return names
}

// queryWeights parses a comma separated list of numbers. Validation of the
// values themselves is left to the engine.
func queryWeights(q url.Values) ([]float64, error) {
	raw := strings.TrimSpace(q.Get("weights"))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, len(parts))
	for i, part := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q", part)
		}
		out[i] = w
	}
	return out, nil
}
