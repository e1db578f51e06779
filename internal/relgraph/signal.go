package relgraph

import (
	"math"
	"strings"

	"github.com/abhisek/lexiq/internal/catalog"
)

const (
	categoryBase    = 50
	categoryPerHit  = 15
	prefixBonus     = 30
	stemBonus       = 40
	suffixBonus     = 20
	stemLen         = 4
	maxStrength     = 100
	meaningWeight   = 0.6
	etymologyWeight = 0.5
	contextMinimum  = 30
	minTokenLen     = 3
)

var derivationPrefixes = []string{"un", "re", "dis", "pre", "post", "anti", "de"}

var derivationSuffixes = []string{"ing", "ed", "er", "tion", "ness", "ly", "ful", "less"}

// categoryStrength scores shared related fields. Zero means no relation.
func categoryStrength(a, b catalog.Item) int {
	common := commonCount(a.RelatedFields, b.RelatedFields)
	if common == 0 {
		return 0
	}
	return min(maxStrength, categoryBase+categoryPerHit*common)
}

// derivationStrength scores shared word-formation features.
func derivationStrength(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	score := 0
	if sharesAffix(a, b, derivationPrefixes, strings.HasPrefix) {
		score += prefixBonus
	}
	if len(a) >= stemLen && len(b) >= stemLen && a[:stemLen] == b[:stemLen] {
		score += stemBonus
	}
	if sharesAffix(a, b, derivationSuffixes, strings.HasSuffix) {
		score += suffixBonus
	}
	return min(maxStrength, score)
}

func sharesAffix(a, b string, table []string, has func(s, affix string) bool) bool {
	for _, affix := range table {
		if has(a, affix) && has(b, affix) {
			return true
		}
	}
	return false
}

// contextStrength scores overlapping meaning or etymology vocabulary.
// Values at or below the context minimum are reported as 0.
func contextStrength(a, b catalog.Item) int {
	score := meaningWeight * jaccard(tokens(a.Meaning), tokens(b.Meaning))
	if ety := etymologyWeight * jaccard(tokens(a.Etymology), tokens(b.Etymology)); ety > score {
		score = ety
	}
	strength := int(math.Round(score * 100))
	if strength <= contextMinimum {
		return 0
	}
	return strength
}

func tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) >= minTokenLen {
			set[tok] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func commonCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, f := range a {
		set[f] = struct{}{}
	}
	n := 0
	for _, f := range b {
		if _, ok := set[f]; ok {
			n++
			// Count each shared label once even if b repeats it.
			delete(set, f)
		}
	}
	return n
}

// strongest returns the best relation between a and b, or false when no
// signal fires. Ties go to category, then derivation, then context.
func strongest(a, b catalog.Item) (Relation, bool) {
	rel := Relation{From: a.Word, To: b.Word}
	if s := categoryStrength(a, b); s > rel.Strength {
		rel.Type, rel.Strength = RelationCategory, s
	}
	if s := derivationStrength(a.Word, b.Word); s > rel.Strength {
		rel.Type, rel.Strength = RelationDerivation, s
	}
	if s := contextStrength(a, b); s > rel.Strength {
		rel.Type, rel.Strength = RelationContext, s
	}
	return rel, rel.Strength > 0
}
