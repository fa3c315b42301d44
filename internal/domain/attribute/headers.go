package attribute

import "strings"

// headerAliases maps dataset header labels to attribute names. Labels are
// matched after normalization (lower case, surrounding spaces trimmed).
var headerAliases = map[string]string{
	"pace":          "pace",
	"shooting":      "shooting",
	"passing":       "passing",
	"defending":     "defending",
	"physical":      "physical",
	"acceleration":  "acceleration",
	"sprint speed":  "sprint_speed",
	"att. position": "att_position",
	"finishing":     "finishing",
	"shot power":    "shot_power",
	"long shots":    "long_shots",
	"volleys":       "volleys",
	"penalties":     "penalties",
	"vision":        "vision",
	"crossing":      "crossing",
	"fk acc.":       "fk_acc",
	"short pass":    "short_pass",
	"long pass":     "long_pass",
	"curve":         "curve",
	"agility":       "agility",
	"balance":       "balance",
	"reactions":     "reactions",
	"ball control":  "ball_control",
	"composure":     "composure",
	"interceptions": "interceptions",
	"heading acc.":  "heading_acc",
	"def. aware":    "def_aware",
	"stand tackle":  "stand_tackle",
	"slide tackle":  "slide_tackle",
	"jumping":       "jumping",
	"stamina":       "stamina",
	"strength":      "strength",
	"aggression":    "aggression",
	"skills":        "skills",
	"weak foot":     "weak_foot",
	"intl. rep":     "intl_rep",
	"weight":        "weight",
}

// dribblingLabel appears twice in the dataset: once for the face stat and
// once for the sub-stat.
const dribblingLabel = "dribbling"

// HeaderMapper resolves dataset column labels to attribute names. It is
// stateful because the dribbling label is ambiguous: the first occurrence is
// the face stat and the second is the sub-stat. Use one mapper per header row.
type HeaderMapper struct {
	dribblingSeen bool
}

// Resolve returns the attribute name for a column label. Snake-case names
// from the schema are accepted as-is.
func (m *HeaderMapper) Resolve(label string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == dribblingLabel {
		if m.dribblingSeen {
			return "dribbling_stat", true
		}
		m.dribblingSeen = true
		return Dribbling, true
	}
	if name, ok := headerAliases[key]; ok {
		return name, true
	}
	if Known(key) {
		return key, true
	}
	return "", false
}

// Label returns the dataset header label for an attribute name, used when
// writing files in the dataset layout.
func Label(name string) string {
	switch name {
	case Dribbling, "dribbling_stat":
		return "Dribbling"
	}
	for label, n := range headerAliases {
		if n == name {
			return titleCase(label)
		}
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "fk" {
			words[i] = "FK"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
