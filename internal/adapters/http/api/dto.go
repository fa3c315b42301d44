package api

import (
	"time"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/similarity"
)

// playerJSON flattens a player into one object keyed like the stored
// columns. Missing attributes are null.
func playerJSON(p model.Player) map[string]any {
	out := map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"alt_pos":    p.AltPositions,
		"accelerate": p.AcceleRate,
		"club":       p.Club,
		"nation":     p.Nation,
		"league":     p.League,
		"foot":       p.Foot,
		"height":     p.Height,
		"revision":   p.Revision,
		"age":        p.Age,
		"club_id":    p.ClubID,
		"league_id":  p.LeagueID,
		"roles":      p.Roles,
		"playstyles": p.Playstyles,
	}
	for _, name := range attribute.All() {
		if v, ok := p.Value(name); ok {
			out[name] = v
		} else {
			out[name] = nil
		}
	}
	return out
}

func playersJSON(players []model.Player) []map[string]any {
	out := make([]map[string]any, len(players))
	for i, p := range players {
		out[i] = playerJSON(p)
	}
	return out
}

func similarJSON(results []similarity.Result) []map[string]any {
	out := make([]map[string]any, len(results))
	for i, r := range results {
		row := playerJSON(r.Player)
		row["distance"] = r.Distance
		out[i] = row
	}
	return out
}

func rankedJSON(ranked []similarity.Ranked) []map[string]any {
	out := make([]map[string]any, len(ranked))
	for i, r := range ranked {
		row := playerJSON(r.Player)
		row["score"] = r.Score
		out[i] = row
	}
	return out
}

type attributeDiffResponse struct {
	Name    string   `json:"name"`
	A       *float64 `json:"a"`
	B       *float64 `json:"b"`
	Diff    *float64 `json:"diff"`
	Missing bool     `json:"missing"`
}

type comparisonResponse struct {
	A          map[string]any          `json:"a"`
	B          map[string]any          `json:"b"`
	Attributes []attributeDiffResponse `json:"attributes"`
	Distance   float64                 `json:"distance"`
}

func comparisonJSON(c similarity.Comparison) comparisonResponse {
	resp := comparisonResponse{
		A:          playerJSON(c.A),
		B:          playerJSON(c.B),
		Attributes: make([]attributeDiffResponse, len(c.Attributes)),
		Distance:   c.Distance,
	}
	for i, d := range c.Attributes {
		row := attributeDiffResponse{Name: d.Name, Missing: d.Missing}
		if va, ok := c.A.Value(d.Name); ok {
			row.A = &va
		}
		if vb, ok := c.B.Value(d.Name); ok {
			row.B = &vb
		}
		if !d.Missing {
			diff := d.Diff
			row.Diff = &diff
		}
		resp.Attributes[i] = row
	}
	return resp
}

type importRequest struct {
	Path string `json:"path"`
}

type importStatusResponse struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	State       string     `json:"state"`
	Imported    int        `json:"imported"`
	Skipped     int        `json:"skipped"`
	Generation  uint64     `json:"generation"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

func importStatusJSON(st model.ImportStatus) importStatusResponse {
	resp := importStatusResponse{
		ID:          st.Job.ID,
		Source:      st.Job.Source,
		State:       string(st.State),
		Imported:    st.Result.Imported,
		Skipped:     st.Result.Skipped,
		Generation:  st.Result.Generation,
		Error:       st.Error,
		SubmittedAt: st.Job.SubmittedAt,
	}
	if !st.StartedAt.IsZero() {
		started := st.StartedAt
		resp.StartedAt = &started
	}
	if !st.FinishedAt.IsZero() {
		finished := st.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

type importDataResponse struct {
	Message    string `json:"message"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Generation uint64 `json:"generation"`
}
