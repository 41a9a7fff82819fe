package subtitles

import (
	"cmp"
	"slices"

	"cuesplice/internal/textutil"
)

// Match is a cue ranked against a text query.
type Match struct {
	Index int
	Score float64
}

// Search ranks entries by IDF-weighted cosine similarity to query and returns
// up to limit matches with a positive score, best first. Ties keep cue order.
func Search(entries []Entry, query string, limit int) []Match {
	q := textutil.NewFingerprint(query)
	if q == nil || len(entries) == 0 {
		return nil
	}
	corpus := textutil.NewCorpus()
	prints := make([]*textutil.Fingerprint, len(entries))
	for i, e := range entries {
		prints[i] = textutil.NewFingerprint(e.Text)
		corpus.Add(prints[i])
	}
	idf := corpus.IDF()
	q = q.WithIDF(idf)

	var matches []Match
	for i, fp := range prints {
		if score := textutil.CosineSimilarity(q, fp.WithIDF(idf)); score > 0 {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
