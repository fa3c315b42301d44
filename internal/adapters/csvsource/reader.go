// Package csvsource loads players from the dataset's CSV layout.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
)

// Report is the outcome of reading one file.
type Report struct {
	Players []model.Player
	Rows    int // data rows seen, header excluded
	Skipped int // rows dropped for a bad or duplicate id
}

type field int

const (
	fieldID field = iota
	fieldName
	fieldAltPositions
	fieldAcceleRate
	fieldClub
	fieldNation
	fieldLeague
	fieldFoot
	fieldHeight
	fieldRevision
	fieldAge
	fieldClubID
	fieldLeagueID
	fieldRoles
	fieldPlaystyles
)

var descriptive = map[string]field{
	"id":         fieldID,
	"name":       fieldName,
	"alt pos":    fieldAltPositions,
	"alt_pos":    fieldAltPositions,
	"accelerate": fieldAcceleRate,
	"club":       fieldClub,
	"nation":     fieldNation,
	"league":     fieldLeague,
	"foot":       fieldFoot,
	"height":     fieldHeight,
	"revision":   fieldRevision,
	"age":        fieldAge,
	"club id":    fieldClubID,
	"club_id":    fieldClubID,
	"league id":  fieldLeagueID,
	"league_id":  fieldLeagueID,
	"roles":      fieldRoles,
	"playstyles": fieldPlaystyles,
}

// layout records which column feeds which player field.
type layout struct {
	id         int
	fields     map[int]field
	attributes map[int]string
}

func parseHeader(header []string) (layout, error) {
	l := layout{id: -1, fields: map[int]field{}, attributes: map[int]string{}}
	var mapper attribute.HeaderMapper
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(label, "\ufeff")))
		if f, ok := descriptive[key]; ok {
			if f == fieldID {
				if l.id < 0 {
					l.id = i
				}
				continue
			}
			l.fields[i] = f
			continue
		}
		if name, ok := mapper.Resolve(key); ok {
			l.attributes[i] = name
		}
	}
	if l.id < 0 {
		return layout{}, ErrMissingIDColumn
	}
	return l, nil
}

// Read parses a header row followed by data rows. Rows whose id is empty,
// not an integer or already seen are skipped. Numeric cells that are empty
// or unparsable leave the attribute missing.
func Read(ctx context.Context, r io.Reader) (Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Report{}, ErrNoHeader
	}
	if err != nil {
		return Report{}, fmt.Errorf("read header: %w", err)
	}
	l, err := parseHeader(header)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	seen := make(map[int]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("read row %d: %w", rep.Rows+1, err)
		}
		rep.Rows++

		p, ok := l.player(rec)
		if !ok {
			rep.Skipped++
			continue
		}
		if _, dup := seen[p.ID]; dup {
			rep.Skipped++
			continue
		}
		seen[p.ID] = struct{}{}
		rep.Players = append(rep.Players, p)
	}
	return rep, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(ctx, f)
}

func (l layout) player(rec []string) (model.Player, bool) {
	if l.id >= len(rec) {
		return model.Player{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(rec[l.id]))
	if err != nil {
		return model.Player{}, false
	}

	p := model.Player{ID: id, Attributes: make(map[string]float64, len(l.attributes))}
	for i, f := range l.fields {
		if i >= len(rec) {
			continue
		}
		setField(&p, f, strings.TrimSpace(rec[i]))
	}
	for i, name := range l.attributes {
		if i >= len(rec) {
			continue
		}
		if v, ok := number(rec[i]); ok {
			p.Attributes[name] = v
		}
	}
	return p, true
}

func setField(p *model.Player, f field, v string) {
	switch f {
	case fieldName:
		p.Name = v
	case fieldAltPositions:
		p.AltPositions = v
	case fieldAcceleRate:
		p.AcceleRate = v
	case fieldClub:
		p.Club = v
	case fieldNation:
		p.Nation = v
	case fieldLeague:
		p.League = v
	case fieldFoot:
		p.Foot = v
	case fieldHeight:
		p.Height = v
	case fieldRevision:
		p.Revision = v
	case fieldAge:
		p.Age = v
	case fieldClubID:
		p.ClubID, _ = strconv.Atoi(v)
	case fieldLeagueID:
		p.LeagueID, _ = strconv.Atoi(v)
	case fieldRoles:
		p.Roles = v
	case fieldPlaystyles:
		p.Playstyles = v
	}
}

// number parses a numeric cell. Values such as "75kg" keep their leading
// digits, matching how the dataset stores weight.
func number(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && s[end] == '-')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
