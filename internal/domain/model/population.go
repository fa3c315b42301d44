package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrDuplicateID is returned when two players share an id.
var ErrDuplicateID = errors.New("duplicate player id")

// Population is an immutable snapshot of every loaded player. A reload
// builds a new Population; readers keep using the one they already hold.
type Population struct {
	generation uint64
	loadedAt   time.Time
	players    []Player // sorted by ID asc
	index      map[int]int
}

// NewPopulation builds a snapshot from players. Attribute maps are copied so
// later changes to the input do not leak into the snapshot.
func NewPopulation(generation uint64, players []Player) (*Population, error) {
	p := &Population{
		generation: generation,
		loadedAt:   time.Now(),
		players:    make([]Player, len(players)),
		index:      make(map[int]int, len(players)),
	}
	for i := range players {
		p.players[i] = players[i].Clone()
	}
	sort.Slice(p.players, func(i, j int) bool { return p.players[i].ID < p.players[j].ID })
	for i := range p.players {
		id := p.players[i].ID
		if _, dup := p.index[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		p.index[id] = i
	}
	return p, nil
}

// Generation identifies the load that produced this snapshot.
func (p *Population) Generation() uint64 {
	if p == nil {
		return 0
	}
	return p.generation
}

// LoadedAt reports when the snapshot was built.
func (p *Population) LoadedAt() time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.loadedAt
}

// Len returns the number of players.
func (p *Population) Len() int {
	if p == nil {
		return 0
	}
	return len(p.players)
}

// Get returns the player with the given id.
func (p *Population) Get(id int) (*Player, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.players[i], true
}

// Each calls fn for every player in ascending id order until fn returns
// false. The pointer must not be used to modify the player.
func (p *Population) Each(fn func(*Player) bool) {
	if p == nil {
		return
	}
	for i := range p.players {
		if !fn(&p.players[i]) {
			return
		}
	}
}

// Players returns the players in ascending id order. The slice is a fresh
// copy; the attribute maps are shared with the snapshot and read-only.
func (p *Population) Players() []Player {
	if p == nil {
		return nil
	}
	out := make([]Player, len(p.players))
	copy(out, p.players)
	return out
}
