package textutil

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// minTokenRunes drops one-letter tokens; cues are too short to lose more.
const minTokenRunes = 2

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string { return cases.Fold().String(s) }

// Fingerprint is a term-weight vector for one piece of text.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// Tokenize case-folds text and splits it on anything that is not a letter
// or digit.
func Tokenize(text string) []string {
	folded := fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

// NewFingerprint returns the term-frequency vector of text, or nil when text
// has no usable tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return newFingerprint(counts)
}

func newFingerprint(weights map[string]float64) *Fingerprint {
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	if sum == 0 {
		return nil
	}
	return &Fingerprint{tokens: weights, norm: math.Sqrt(sum)}
}

// TokenCount returns the number of distinct tokens.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// WithIDF returns a copy weighted by idf. Terms missing from idf keep their
// raw count. A fingerprint whose every weight drops to zero becomes nil.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		w := count
		if v, ok := idf[token]; ok {
			w *= v
		}
		if w != 0 {
			weighted[token] = w
		}
	}
	return newFingerprint(weighted)
}

// CosineSimilarity compares two fingerprints. Nil inputs score 0.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(b.tokens) < len(a.tokens) {
		a, b = b, a
	}
	var dot float64
	for token, w := range a.tokens {
		dot += w * b.tokens[token]
	}
	return dot / (a.norm * b.norm)
}

// Corpus counts document frequencies for IDF weights.
type Corpus struct {
	docs    int
	docFreq map[string]int
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add counts fp's distinct terms once.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docs++
	for token := range fp.tokens {
		c.docFreq[token]++
	}
}

// IDF returns smoothed log((N+1)/(1+df)) weights.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docs == 0 {
		return nil
	}
	n := float64(c.docs)
	idf := make(map[string]float64, len(c.docFreq))
	for term, df := range c.docFreq {
		idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}
	return idf
}
