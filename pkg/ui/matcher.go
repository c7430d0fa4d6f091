package ui

import "strings"

// Match scoring weights. Candidate confidence never fully zeroes a score;
// it scales it into the [0.5, 1.0] band.
const (
	textWeight       = 0.5
	descriptionBonus = 0.2
	kindBonus        = 0.2
	confidenceFloor  = 0.5

	// descriptionEcho is the label similarity at which a target's free-text
	// description is considered a restatement of its label text.
	descriptionEcho = 0.8
)

// Matcher finds the live element best matching a recorded target descriptor.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Find scans the snapshot for the best-scoring element of the target's kind
// (all kinds when the target kind is unknown). It returns the winning
// element's position and score, or ok=false when the relevant categories are
// empty or every candidate scored zero. Ties keep the first candidate seen;
// the scan order over the snapshot is fixed.
func (m *Matcher) Find(snap Snapshot, target Target) (Point, float64, bool) {
	cands := snap.candidates(target.Kind)
	if len(cands) == 0 {
		return Point{}, 0.0, false
	}

	best := Point{}
	bestScore := 0.0
	for _, cand := range cands {
		score := m.score(cand, target)
		if score > bestScore {
			bestScore = score
			best = cand.point
		}
	}
	if bestScore == 0.0 {
		return Point{}, 0.0, false
	}
	return best, bestScore, true
}

// score rates a single candidate against the target descriptor.
func (m *Matcher) score(cand candidate, target Target) float64 {
	score := LabelSimilarity(target.Text, cand.text) * textWeight

	// A description that merely restates the label, paired with a candidate
	// whose text contains that label, is strong evidence of the same element
	// even when the label similarity itself is diluted.
	if target.Description != "" && target.Text != "" {
		if LabelSimilarity(target.Description, target.Text) >= descriptionEcho &&
			strings.Contains(strings.ToLower(cand.text), strings.ToLower(target.Text)) {
			score += descriptionBonus
		}
	}

	if target.Kind != KindUnknown && cand.kind == target.Kind {
		score += kindBonus
	}

	// Low-confidence detections are discounted, never discarded.
	return score * (confidenceFloor + cand.conf*confidenceFloor)
}

// Character-level similarity bands for short UI labels. This variant is
// deliberately different from the token-level calculator in pkg/similarity:
// UI labels are short, often single words, and token sets carry no signal.
const (
	charJaccardCeil   = 0.85
	prefixBonusCeil   = 0.15
	containmentFloor  = 0.3
	containmentSpread = 0.2
)

// LabelSimilarity scores two short UI labels in [0,1]. Exact match scores 1.
// Otherwise the score is character-set Jaccard scaled into [0, 0.85] plus a
// common-prefix bonus of up to 0.15. Substring containment yields a lower
// fallback band [0.3, 0.5], used only when it beats the Jaccard-based score.
func LabelSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == lb {
		return 1.0
	}

	score := charJaccard(la, lb)*charJaccardCeil + prefixBonus(la, lb)

	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		shorter, longer := len([]rune(la)), len([]rune(lb))
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		contained := containmentFloor + containmentSpread*float64(shorter)/float64(longer)
		if contained > score {
			score = contained
		}
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// charJaccard computes Jaccard similarity over the rune sets of two strings.
func charJaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	inter := 0
	for r := range setA {
		if setB[r] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// prefixBonus rewards a shared prefix, scaled by the shorter string's length.
func prefixBonus(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	common := 0
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			break
		}
		common++
	}
	if n == 0 {
		return 0.0
	}
	return prefixBonusCeil * float64(common) / float64(n)
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool)
	for _, r := range s {
		if r == ' ' {
			continue
		}
		set[r] = true
	}
	return set
}
