// Package similarity scores how semantically close two free-text strings are.
// It tolerates phrasing differences in mixed Korean/English text and is used
// both for live UI-element matching and for offline BVT-to-test-case matching.
package similarity

import (
	"strings"
	"unicode"
)

// Default blend weights for Calculate.
const (
	DefaultJaccardWeight    = 0.6
	DefaultContainmentWeight = 0.4
)

// Context blend constants for CalculateWithContext.
const (
	bestCandidateWeight = 0.7
	meanCandidateWeight = 0.3
	categoryBonusScale  = 0.2
)

// Calculator scores text similarity in the [0,1] range.
// The zero value is not usable; use NewCalculator.
type Calculator struct {
	jaccardWeight     float64
	containmentWeight float64
}

// NewCalculator creates a Calculator with the default blend weights.
func NewCalculator() *Calculator {
	return &Calculator{
		jaccardWeight:     DefaultJaccardWeight,
		containmentWeight: DefaultContainmentWeight,
	}
}

// NewCalculatorWithWeights creates a Calculator with custom Jaccard and
// containment weights. Weights are used as given; callers normally keep
// them summing to 1.0.
func NewCalculatorWithWeights(jaccard, containment float64) *Calculator {
	return &Calculator{jaccardWeight: jaccard, containmentWeight: containment}
}

// Calculate returns the blended similarity of two strings in [0,1].
// Empty input on either side scores 0. Identical strings score 1, both
// before and after normalization. The result is deterministic for
// identical inputs.
func (c *Calculator) Calculate(text1, text2 string) float64 {
	if text1 == "" || text2 == "" {
		return 0.0
	}
	if text1 == text2 {
		return 1.0
	}

	n1 := Normalize(text1)
	n2 := Normalize(text2)
	if n1 == "" && n2 == "" {
		return 1.0
	}
	if n1 == "" || n2 == "" {
		return 0.0
	}
	if n1 == n2 {
		return 1.0
	}

	score := c.jaccardWeight*tokenJaccard(n1, n2) + c.containmentWeight*containment(n1, n2)
	return clamp01(score)
}

// CalculateWithContext scores a check description against a list of candidate
// action descriptions, using up to three category strings as context. Empty
// categories are skipped. The final score rewards one very strong candidate
// (weight 0.7 on the max) while still crediting overall topical alignment
// (weight 0.3 on the mean).
func (c *Calculator) CalculateWithContext(check string, categories []string, candidates []string) float64 {
	if check == "" || len(candidates) == 0 {
		return 0.0
	}

	var cats []string
	for _, cat := range categories {
		if cat != "" {
			cats = append(cats, cat)
		}
	}
	contextText := check
	if len(cats) > 0 {
		contextText = strings.Join(cats, " ") + " " + check
	}

	var scores []float64
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		base := c.Calculate(check, cand)
		ctx := c.Calculate(contextText, cand)
		ctx = clamp01(ctx + categoryBonus(cats, cand))
		if ctx > base {
			scores = append(scores, ctx)
		} else {
			scores = append(scores, base)
		}
	}
	if len(scores) == 0 {
		return 0.0
	}

	best := 0.0
	sum := 0.0
	for _, s := range scores {
		if s > best {
			best = s
		}
		sum += s
	}
	mean := sum / float64(len(scores))
	return clamp01(bestCandidateWeight*best + meanCandidateWeight*mean)
}

// categoryBonus returns the fraction of categories whose token sets intersect
// the candidate's tokens, scaled by categoryBonusScale.
func categoryBonus(categories []string, candidate string) float64 {
	if len(categories) == 0 {
		return 0.0
	}
	candTokens := tokenSet(Normalize(candidate))
	hits := 0
	for _, cat := range categories {
		catTokens := tokenSet(Normalize(cat))
		for tok := range catTokens {
			if candTokens[tok] {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(categories)) * categoryBonusScale
}

// Normalize lowercases the input, strips every character that is not a word
// character, whitespace, or Hangul, and collapses runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case isHangul(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isHangul reports whether r falls in the Hangul syllable or Jamo ranges.
// unicode.IsLetter already covers these, but the check is kept explicit so
// the normalization contract does not silently depend on table coverage.
func isHangul(r rune) bool {
	return (r >= 0xAC00 && r <= 0xD7A3) || // syllables
		(r >= 0x1100 && r <= 0x11FF) || // Jamo
		(r >= 0x3130 && r <= 0x318F) // compatibility Jamo
}

// tokenJaccard computes set-intersection over set-union of whitespace tokens.
func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range setA {
		if setB[tok] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// containment scores how much of the shorter string lives inside the longer
// one. Full substring containment scores by length ratio; otherwise by the
// fraction of the shorter string's tokens present in the longer string.
func containment(a, b string) float64 {
	shorter, longer := a, b
	if len([]rune(shorter)) > len([]rune(longer)) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return float64(len([]rune(shorter))) / float64(len([]rune(longer)))
	}

	shortTokens := strings.Fields(shorter)
	if len(shortTokens) == 0 {
		return 0.0
	}
	longSet := tokenSet(longer)
	found := 0
	for _, tok := range shortTokens {
		if longSet[tok] {
			found++
		}
	}
	return float64(found) / float64(len(shortTokens))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
