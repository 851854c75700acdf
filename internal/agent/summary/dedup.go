package summary

import (
	"regexp"
	"strings"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

// SimilarityThreshold is the word-overlap ratio at which two bullets count as
// the same point.
const SimilarityThreshold = 0.6

var nonWord = regexp.MustCompile(`[^\w\s]`)

func words(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(nonWord.ReplaceAllString(strings.ToLower(text), "")) {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// Overlap is |A ∩ B| / min(|A|, |B|) over the normalized word sets of a and
// b. Texts with no qualifying words never overlap.
func Overlap(a, b string) float64 {
	wa, wb := words(a), words(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(min(len(wa), len(wb)))
}

// Dedup returns the incoming bullets that are not near-duplicates of an
// existing bullet or of an earlier incoming one. Neither slice is modified.
func Dedup(incoming, existing []model.SummaryBullet) []model.SummaryBullet {
	accepted := []model.SummaryBullet{}
	seen := make([]string, 0, len(existing)+len(incoming))
	for _, e := range existing {
		seen = append(seen, e.Text)
	}

	for _, b := range incoming {
		if duplicateOf(b.Text, seen) {
			continue
		}
		accepted = append(accepted, b)
		seen = append(seen, b.Text)
	}
	return accepted
}

func duplicateOf(text string, seen []string) bool {
	for _, s := range seen {
		if Overlap(text, s) >= SimilarityThreshold {
			return true
		}
	}
	return false
}
