package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
)

var leadingColumns = []string{"ID", "Name", "Alt POS", "AcceleRATE", "Club", "Nation", "League", "Foot", "Height", "Revision", "Age", "Club ID", "League ID", "Roles", "Playstyles"}

// Header returns the column labels written by Write.
func Header() []string {
	names := attribute.All()
	out := make([]string, 0, len(leadingColumns)+len(names))
	out = append(out, leadingColumns...)
	for _, name := range names {
		out = append(out, attribute.Label(name))
	}
	return out
}

// Write encodes players in the dataset layout. Missing attributes are
// written as empty cells so Read restores them as missing.
func Write(w io.Writer, players []model.Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	names := attribute.All()
	row := make([]string, 0, len(leadingColumns)+len(names))
	for i := range players {
		p := &players[i]
		row = append(row[:0],
			strconv.Itoa(p.ID), p.Name, p.AltPositions, p.AcceleRate, p.Club, p.Nation, p.League,
			p.Foot, p.Height, p.Revision, p.Age, strconv.Itoa(p.ClubID), strconv.Itoa(p.LeagueID),
			p.Roles, p.Playstyles,
		)
		for _, name := range names {
			if v, ok := p.Value(name); ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write player %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
