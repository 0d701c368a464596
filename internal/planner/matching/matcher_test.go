package matching

import (
	"testing"

	"github.com/google/uuid"
)

func candidate(name, providerType, description string, tags ...string) Provider {
	return Provider{
		ID:           uuid.New(),
		BusinessName: name,
		ProviderType: providerType,
		Description:  description,
		Tags:         tags,
	}
}

func TestRank_TypeMatchOutranksUnrelatedTypes(t *testing.T) {
	candidates := []Provider{
		candidate("Flower Power", "florist", "arrangements"),
		candidate("Halal Kitchen", "catering", "meals"),
	}

	results := Rank(candidates, []string{"catering"}, "Wedding for 200 guests", TopChecklist)

	if results[0].BusinessName != "Halal Kitchen" {
		t.Fatalf("expected catering provider ranked first, got %s", results[0].BusinessName)
	}
	if results[0].Score != 10 {
		t.Fatalf("expected type match score 10, got %d", results[0].Score)
	}
	if results[1].Score != 0 {
		t.Fatalf("expected unrelated provider score 0, got %d", results[1].Score)
	}
}

func TestRank_TagSubstringAddsFive(t *testing.T) {
	candidates := []Provider{
		candidate("Halal Kitchen", "catering", "", "halal", "buffet"),
	}

	results := Rank(candidates, nil, "Wedding with halal catering required", TopChecklist)

	if results[0].Score != 5 {
		t.Fatalf("expected 5 for one tag substring hit, got %d", results[0].Score)
	}
}

func TestRank_SharedLongWordsAddTwoEach(t *testing.T) {
	candidates := []Provider{
		candidate("Grand Hall", "venue", "spacious wedding venue for large guests"),
	}

	// Shared words over three characters: "wedding", "guests". "for" is too short.
	results := Rank(candidates, nil, "wedding for 200 guests", TopChecklist)

	if results[0].Score != 4 {
		t.Fatalf("expected 4 for two shared words, got %d", results[0].Score)
	}
}

func TestRank_RepeatedContextWordCountsOnce(t *testing.T) {
	candidates := []Provider{
		candidate("Grand Hall", "venue", "wedding specialists"),
	}

	results := Rank(candidates, nil, "wedding wedding wedding", TopChecklist)

	if results[0].Score != 2 {
		t.Fatalf("expected repeated word to count once, got %d", results[0].Score)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	candidates := []Provider{
		candidate("First", "venue", ""),
		candidate("Second", "venue", ""),
		candidate("Third", "venue", ""),
	}

	results := Rank(candidates, []string{"venue"}, "", TopChecklist)

	for i, name := range []string{"First", "Second", "Third"} {
		if results[i].BusinessName != name {
			t.Fatalf("expected stable order, got %s at %d", results[i].BusinessName, i)
		}
	}
}

func TestRank_TruncatesToTopN(t *testing.T) {
	candidates := make([]Provider, 9)
	for i := range candidates {
		candidates[i] = candidate("P", "venue", "")
	}

	if got := len(Rank(candidates, nil, "", TopChecklist)); got != 6 {
		t.Fatalf("expected 6 results, got %d", got)
	}
	if got := len(Rank(candidates, nil, "", 0)); got != 9 {
		t.Fatalf("expected no truncation with topN 0, got %d", got)
	}
}

func TestExtractCity(t *testing.T) {
	tests := []struct {
		context string
		want    string
	}{
		{"Wedding for 200 guests in Toronto, halal catering required", "toronto"},
		{"Birthday party in New York", "new york"},
		{"Corporate retreat with no location", ""},
	}
	for _, tt := range tests {
		if got := ExtractCity(tt.context); got != tt.want {
			t.Fatalf("ExtractCity(%q) = %q, want %q", tt.context, got, tt.want)
		}
	}
}
