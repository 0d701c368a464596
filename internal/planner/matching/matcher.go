// Package matching ranks providers against a checklist step.
//
// The score is a heuristic ranking, not a probabilistic or learned relevance
// measure. Ties keep their original order.
package matching

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Result set sizes for the two matcher call sites.
const (
	TopChecklist = 6
	TopSearch    = 10
)

// Provider is a matching candidate. Candidates are expected to be
// pre-filtered to active, subscribed providers.
type Provider struct {
	ID               uuid.UUID
	BusinessName     string
	ProviderType     string
	LocationCity     string
	LocationProvince string
	Description      string
	Tags             []string
	LogoURL          *string
	OwnerName        string
	OwnerEmail       string
}

// Scored is a provider annotated with its relevance score.
type Scored struct {
	Provider
	Score int
}

// cityPattern pulls a candidate city name out of a free-text prompt,
// e.g. "wedding in Toronto, halal catering" yields "toronto".
var cityPattern = regexp.MustCompile(`in\s+([a-zA-Z\s]+?)(?:\s+in|\s*,|\s*$)`)

// ExtractCity returns a lowercase city name guessed from the context string,
// or "" when none is found.
func ExtractCity(context string) string {
	m := cityPattern.FindStringSubmatch(strings.ToLower(context))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Rank scores the candidates against the desired provider-type tags and the
// free-text context, sorts them by descending score preserving input order on
// ties, and returns at most topN results.
//
// Per provider: +10 when its primary type is in the tag set, +5 for each of
// its own tags appearing as a case-insensitive substring of the context, and
// +2 for each distinct word longer than three characters shared between the
// context and the provider description (exact token match).
func Rank(candidates []Provider, tags []string, context string, topN int) []Scored {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	loweredContext := strings.ToLower(context)
	contextWords := tokenize(loweredContext)

	scored := make([]Scored, 0, len(candidates))
	for _, p := range candidates {
		score := 0

		if _, ok := tagSet[strings.ToLower(p.ProviderType)]; ok {
			score += 10
		}

		for _, tag := range p.Tags {
			if tag == "" {
				continue
			}
			if strings.Contains(loweredContext, strings.ToLower(tag)) {
				score += 5
			}
		}

		descWords := tokenize(strings.ToLower(p.Description))
		for word := range contextWords {
			if len(word) <= 3 {
				continue
			}
			if _, ok := descWords[word]; ok {
				score += 2
			}
		}

		scored = append(scored, Scored{Provider: p, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func tokenize(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
