package schema

import "github.com/agnivade/levenshtein"

// maxSuggestDistance bounds how far a candidate may be from the unknown
// name. Short names get a tighter bound so "id" does not suggest "ts".
func maxSuggestDistance(name string) int {
	if len([]rune(name)) < 3 {
		return 1
	}
	return 2
}

// Suggest returns the closest candidate within the edit-distance bound, or
// "" when nothing is close enough. Ties break to the smaller distance, then
// the shorter candidate, then lexicographic order, so runs are repeatable.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance(name) + 1
	for _, cand := range candidates {
		if cand == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, cand)
		if d > maxSuggestDistance(name) {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist = cand, d
		case d == bestDist && best != "":
			if len(cand) < len(best) || (len(cand) == len(best) && cand < best) {
				best = cand
			}
		}
	}
	return best
}

// SuggestLabel proposes a replacement for an unknown subscript label.
func (d *Definition) SuggestLabel(label string) string {
	return Suggest(label, d.SubscriptLabels())
}

// SuggestAttr proposes a replacement for an unknown attribute name.
func (d *Definition) SuggestAttr(name string) string {
	return Suggest(name, d.AttrNames())
}
