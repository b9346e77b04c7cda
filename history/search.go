package history

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Search ranks entries by how closely their action name matches query.
// Names containing the query rank first, the rest by edit distance; ties go
// to the newest entry. An empty query returns entries newest first. limit
// <= 0 means no limit.
func Search(entries []Entry, query string, limit int) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		e    Entry
		dist int
	}
	ranked := make([]scored, len(entries))
	for i, e := range entries {
		d := 0
		if q != "" {
			name := strings.ToLower(e.Name)
			if !strings.Contains(name, q) {
				d = 1 + levenshtein.ComputeDistance(q, name)
			}
		}
		ranked[i] = scored{e: e, dist: d}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return ranked[i].e.Seq > ranked[j].e.Seq
	})

	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Entry, limit)
	for i := range out {
		out[i] = ranked[i].e
	}
	return out
}
