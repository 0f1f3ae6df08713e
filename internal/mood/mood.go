// Package mood defines the closed set of mood labels, the static catalog that
// describes each label, and the rule-based classifiers that map captured
// signals (text, voice features, facial expressions) onto a label.
package mood

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Label is one of the seven supported moods.
type Label string

// Supported labels.
const (
	Happy     Label = "happy"
	Sad       Label = "sad"
	Angry     Label = "angry"
	Relaxed   Label = "relaxed"
	Calm      Label = "calm"
	Energetic Label = "energetic"
	Romantic  Label = "romantic"
)

// DefaultLabel is returned by the classifiers when nothing matches.
const DefaultLabel = Relaxed

// order is the catalog enumeration order. Ties in text classification are
// broken by position in this slice.
var order = []Label{Happy, Sad, Angry, Relaxed, Calm, Energetic, Romantic}

// Labels returns all supported labels in catalog order.
func Labels() []Label {
	return slices.Clone(order)
}

// Strings returns all supported labels as plain strings in catalog order.
func Strings() []string {
	return lo.Map(order, func(l Label, _ int) string { return string(l) })
}

// String implements fmt.Stringer.
func (l Label) String() string {
	return string(l)
}

// Valid reports whether l is a member of the closed label set.
func (l Label) Valid() bool {
	return slices.Contains(order, l)
}

// Parse normalizes s (trimmed, lower-cased) and reports whether it names a
// supported label.
func Parse(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", false
	}
	return l, true
}
