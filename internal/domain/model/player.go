// Package model contains domain models passed between layers.
package model

import "math"

// Player is one row of the loaded dataset. Descriptive fields are carried
// for display only; numeric attributes live in Attributes keyed by schema
// name. An attribute absent from the map is missing, never zero.
type Player struct {
	ID           int
	Name         string
	AltPositions string
	AcceleRate   string
	Club         string
	Nation       string
	League       string
	Foot         string
	Height       string
	Revision     string
	Age          string
	Roles        string
	Playstyles   string
	ClubID       int
	LeagueID     int

	Attributes map[string]float64
}

// Value returns the numeric value of an attribute. It reports false when the
// attribute is absent or not a finite number.
func (p *Player) Value(name string) (float64, bool) {
	v, ok := p.Attributes[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Clone returns a copy of p that shares no mutable state with it.
func (p *Player) Clone() Player {
	out := *p
	if p.Attributes != nil {
		out.Attributes = make(map[string]float64, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
