package library

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/stellaron-app/stellaron/internal/domain"
)

// Search ranks the cached catalog against a fuzzy query over title and
// author. An empty query or an empty cache yields no results; search never
// hits the network.
func (s *Service) Search(query string) []domain.Book {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	snap, ok := s.CachedCatalog()
	if !ok || len(snap.Books) == 0 {
		return nil
	}

	targets := make([]string, len(snap.Books))
	for i, b := range snap.Books {
		targets[i] = b.Title + " " + b.Author
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	results := make([]domain.Book, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, snap.Books[r.OriginalIndex])
	}
	return results
}
