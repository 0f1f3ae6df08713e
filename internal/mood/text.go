package mood

import (
	"strings"

	"github.com/samber/lo"
)

// TextScore is the set of keywords of one label found in a piece of text.
type TextScore struct {
	Label   Label
	Matches []string
}

// ScoreText returns, for every label in catalog order, the distinct keywords
// that occur as substrings of the lower-cased text.
func ScoreText(text string) []TextScore {
	lower := strings.ToLower(text)

	scores := make([]TextScore, 0, len(catalog))
	for _, p := range catalog {
		matches := lo.Filter(p.Keywords, func(keyword string, _ int) bool {
			return strings.Contains(lower, keyword)
		})
		scores = append(scores, TextScore{Label: p.Label, Matches: matches})
	}
	return scores
}

// ClassifyText maps free-form text to a label by keyword count.
//
// The label with the strictly highest number of matched keywords wins; equal
// counts resolve to the label that comes first in catalog order. Text with no
// matches (including empty or whitespace-only text) yields DefaultLabel.
func ClassifyText(text string) Label {
	best, bestCount := DefaultLabel, 0
	for _, s := range ScoreText(text) {
		if len(s.Matches) > bestCount {
			best, bestCount = s.Label, len(s.Matches)
		}
	}
	return best
}
