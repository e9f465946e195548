package catalog

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/citadel/internal/domain"
)

// SearchResult is a cached character matched by a local search
type SearchResult struct {
	Character      domain.Character
	MatchedIndexes []int // Byte offsets in Name that matched, for highlighting
	Score          int   // Higher is better for fuzzy matches
	Approximate    bool  // Matched by edit distance rather than subsequence
}

// nameIndex implements sahilm/fuzzy.Source over character names
type nameIndex []domain.Character

func (idx nameIndex) String(i int) string { return idx[i].Name }
func (idx nameIndex) Len() int            { return len(idx) }

// Search ranks cached characters against query.
// Subsequence matches come first; when none exist, names within a small
// edit distance of the query are returned instead. limit <= 0 means no limit.
func (q *Queries) Search(query string, limit int) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	chars := q.GetCachedCharacters()
	if len(chars) == 0 {
		return nil
	}

	results := rankFuzzy(query, chars)
	if len(results) == 0 {
		results = rankApproximate(query, chars)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	q.logger.Debug("local search", "query", query, "results", len(results))
	return results
}

func rankFuzzy(query string, chars []domain.Character) []SearchResult {
	matches := sfuzzy.FindFrom(query, nameIndex(chars))
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Character:      chars[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}
	// FindFrom already sorts by score; ties keep id order
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// rankApproximate tolerates typos by comparing the query against each word of
// every name and keeping the closest word
func rankApproximate(query string, chars []domain.Character) []SearchResult {
	query = strings.ToLower(query)
	maxDistance := max(1, len([]rune(query))/2)

	type ranked struct {
		result   SearchResult
		distance int
	}
	var found []ranked
	for _, c := range chars {
		best := -1
		for _, word := range strings.Fields(strings.ToLower(c.Name)) {
			d := lfuzzy.LevenshteinDistance(query, word)
			if best < 0 || d < best {
				best = d
			}
		}
		if whole := lfuzzy.LevenshteinDistance(query, strings.ToLower(c.Name)); best < 0 || whole < best {
			best = whole
		}
		if best >= 0 && best <= maxDistance {
			found = append(found, ranked{
				result:   SearchResult{Character: c, Score: -best, Approximate: true},
				distance: best,
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].distance < found[j].distance })
	results := make([]SearchResult, len(found))
	for i, f := range found {
		results[i] = f.result
	}
	return results
}
