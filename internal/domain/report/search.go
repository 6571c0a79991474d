package report

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SearchDrivers returns the drivers matching query, closest first. Matching
// ignores case and accents, so "jose" finds "José". An empty query returns
// every driver unchanged. limit <= 0 means no limit.
func SearchDrivers(drivers []string, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return limitTo(append([]string(nil), drivers...), limit)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, drivers)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return limitTo(out, limit)
}

func limitTo(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
