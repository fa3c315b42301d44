// Package attribute defines the fixed schema of numeric player attributes.
//
// Every attribute that may take part in a distance computation is listed
// here. Callers validate requested names against this allow-list before any
// arithmetic happens.
package attribute

import (
	"strings"
)

// Face stats shown on the player card.
const (
	Pace      = "pace"
	Shooting  = "shooting"
	Passing   = "passing"
	Dribbling = "dribbling"
	Defending = "defending"
	Physical  = "physical"
)

var faceStats = []string{Pace, Shooting, Passing, Dribbling, Defending, Physical}

var subStats = []string{
	"acceleration",
	"sprint_speed",
	"att_position",
	"finishing",
	"shot_power",
	"long_shots",
	"volleys",
	"penalties",
	"vision",
	"crossing",
	"fk_acc",
	"short_pass",
	"long_pass",
	"curve",
	"agility",
	"balance",
	"reactions",
	"ball_control",
	"dribbling_stat",
	"composure",
	"interceptions",
	"heading_acc",
	"def_aware",
	"stand_tackle",
	"slide_tackle",
	"jumping",
	"stamina",
	"strength",
	"aggression",
}

// Numeric profile fields. They are not stats but are still comparable.
var profileStats = []string{"skills", "weak_foot", "intl_rep", "weight"}

var all = func() []string {
	out := make([]string, 0, len(faceStats)+len(subStats)+len(profileStats))
	out = append(out, faceStats...)
	out = append(out, subStats...)
	out = append(out, profileStats...)
	return out
}()

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(all))
	for _, name := range all {
		m[name] = struct{}{}
	}
	return m
}()

// All returns every known attribute name in schema order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// Default returns the attribute set used when a caller does not choose one.
func Default() []string {
	out := make([]string, len(faceStats))
	copy(out, faceStats)
	return out
}

// Known reports whether name is part of the schema.
func Known(name string) bool {
	_, ok := known[name]
	return ok
}

// Parse splits a comma-separated list of attribute names. Names are trimmed
// and lower-cased; empty fragments are dropped. Duplicates are kept, and
// unknown names are returned as given so validation can report them.
func Parse(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
