package memstore

import (
	"sort"

	"github.com/RichardKnop/docplan/internal/planner"
)

// sortDocuments sorts in place by each key in turn, later keys breaking
// ties. Missing fields sort like null, before any value.
func sortDocuments(docs []planner.Document, keys []planner.SortKey) {
	if len(keys) == 0 {
		return
	}

	rows := make([]planner.Row, 0, len(keys))
	for _, aKey := range keys {
		rows = append(rows, planner.NewRow(aKey.Field))
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for k, aKey := range keys {
			valI, _ := rows[k].Lookup(docs[i])
			valJ, _ := rows[k].Lookup(docs[j])

			cmp := planner.Compare(valI, valJ)
			if cmp == 0 {
				continue // Equal, check next key
			}

			if aKey.Direction == planner.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}
