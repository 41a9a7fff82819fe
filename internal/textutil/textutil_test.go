package textutil

import (
	"math"
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Don't STOP, me now! A 2nd-take")
	want := []string{"don", "stop", "me", "now", "2nd", "take"}
	if !slices.Equal(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize("Straße"); !slices.Equal(got, []string{"strasse"}) {
		t.Fatalf("case folding: %v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the quick brown fox", "The QUICK brown fox", 1},
		{"disjoint", "hello world", "goodbye moon", 0},
		{"empty", "", "hello", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(NewFingerprint(tc.a), NewFingerprint(tc.b))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("CosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}

	partial := CosineSimilarity(NewFingerprint("red green"), NewFingerprint("red blue"))
	if math.Abs(partial-0.5) > 1e-9 {
		t.Fatalf("partial overlap = %v, want 0.5", partial)
	}
}

func TestIDFDownweightsCommonTerms(t *testing.T) {
	docs := []string{"we go now", "we stay here", "we leave soon"}
	corpus := NewCorpus()
	for _, d := range docs {
		corpus.Add(NewFingerprint(d))
	}
	idf := corpus.IDF()
	if idf["we"] >= idf["now"] {
		t.Fatalf("common term should weigh less: we=%v now=%v", idf["we"], idf["now"])
	}

	query := NewFingerprint("we now").WithIDF(idf)
	hit := CosineSimilarity(query, NewFingerprint(docs[0]).WithIDF(idf))
	miss := CosineSimilarity(query, NewFingerprint(docs[1]).WithIDF(idf))
	if hit <= miss {
		t.Fatalf("expected the doc sharing the rare term to win: hit=%v miss=%v", hit, miss)
	}
	if NewCorpus().IDF() != nil {
		t.Fatal("empty corpus should have no IDF")
	}
}

func TestProjectToken(t *testing.T) {
	cases := map[string]string{
		"  Promo Cut ": "promo_cut",
		"a/b:c":        "a_b_c",
		"Spring-2024":  "spring-2024",
		"!!!":          "",
		"":             "",
		"Café":         "café",
	}
	for in, want := range cases {
		if got := ProjectToken(in); got != want {
			t.Fatalf("ProjectToken(%q) = %q, want %q", in, got, want)
		}
	}
}
