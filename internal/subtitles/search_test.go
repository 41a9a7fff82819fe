package subtitles

import "testing"

func TestSearchRanksRareTermsFirst(t *testing.T) {
	entries := []Entry{
		{Text: "we start the day"},
		{Text: "we open the shop"},
		{Text: "the shop closes at night"},
		{Text: "goodbye"},
	}
	got := Search(entries, "Shop night", 0)
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 1 {
		t.Fatalf("unexpected matches %+v", got)
	}
	if got := Search(entries, "shop", 1); len(got) != 1 {
		t.Fatalf("limit not applied: %+v", got)
	}
	if got := Search(entries, "?", 5); got != nil {
		t.Fatalf("empty query should match nothing: %+v", got)
	}
}
