package probe

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
)

// Performer tiers: each draw picks a tier, then a value inside its range.
var tiers = []struct {
	min, span float64
}{
	{60, 15}, // average
	{75, 10}, // high
	{40, 20}, // low
	{86, 13}, // elite
	{25, 15}, // very low
}

var (
	clubs   = []string{"Northbridge FC", "Harbor United", "Castle Rovers", "Vale Athletic", "Riverside City"}
	nations = []string{"England", "Spain", "Brazil", "France", "Japan", "Ghana"}
	leagues = []string{"Premier Division", "First Division"}
	feet    = []string{"Right", "Left"}
)

// missingEvery leaves one face stat out of every n-th generated player.
const missingEvery = 20

// Generate returns n synthetic players with ids 1..n. The same seed always
// yields the same players.
func Generate(n int, seed uint64) []model.Player {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	names := attribute.All()
	faces := attribute.Default()

	players := make([]model.Player, n)
	for i := range players {
		club := rng.IntN(len(clubs))
		league := club % len(leagues)
		p := model.Player{
			ID:         i + 1,
			Name:       fmt.Sprintf("Player %04d", i+1),
			Club:       clubs[club],
			ClubID:     club + 1,
			League:     leagues[league],
			LeagueID:   league + 1,
			Nation:     nations[rng.IntN(len(nations))],
			Foot:       feet[rng.IntN(len(feet))],
			Age:        fmt.Sprintf("%dyrs", 17+rng.IntN(20)),
			Height:     fmt.Sprintf("%dcm", 165+rng.IntN(30)),
			Attributes: make(map[string]float64, len(names)),
		}
		tier := tiers[rng.IntN(len(tiers))]
		for _, name := range names {
			p.Attributes[name] = float64(int(tier.min + rng.Float64()*tier.span))
		}
		if (i+1)%missingEvery == 0 {
			delete(p.Attributes, faces[rng.IntN(len(faces))])
		}
		players[i] = p
	}
	return players
}
