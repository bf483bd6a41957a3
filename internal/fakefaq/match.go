// ABOUTME: Keyword-overlap search over the fixture catalogue
// ABOUTME: Scores questions by cosine similarity of their content-word sets

package fakefaq

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultThreshold is the minimum score for a question to be returned.
	DefaultThreshold = 0.4
	// DefaultMaxResults caps the number of candidates returned.
	DefaultMaxResults = 3
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "at": true, "be": true,
	"can": true, "do": true, "does": true, "for": true, "how": true, "i": true,
	"in": true, "is": true, "it": true, "me": true, "my": true, "of": true,
	"on": true, "or": true, "the": true, "there": true, "to": true, "what": true,
	"when": true, "where": true, "who": true, "with": true, "you": true, "your": true,
}

// tokenize lower-cases text and returns its distinct content words.
func tokenize(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]bool, len(words))
	for _, w := range words {
		if !stopWords[w] {
			set[w] = true
		}
	}
	return set
}

// similarity is the cosine similarity of two word sets.
func similarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	return float64(shared) / math.Sqrt(float64(len(a)*len(b)))
}

// search returns up to limit catalogue entries scoring at least threshold,
// best first. Ties keep catalogue order.
func search(faqs []FAQ, query string, threshold float64, limit int) []FAQ {
	q := tokenize(query)

	type scored struct {
		faq   FAQ
		score float64
	}
	var hits []scored
	for _, faq := range faqs {
		if score := similarity(q, tokenize(faq.Question)); score >= threshold {
			hits = append(hits, scored{faq: faq, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]FAQ, len(hits))
	for i, h := range hits {
		out[i] = h.faq
	}
	return out
}
