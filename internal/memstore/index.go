package memstore

import (
	"context"
	"io"
	"slices"
	"sort"

	"github.com/RichardKnop/docplan/internal/planner"
)

type indexScanner func(key []any, docIdx int) error

type indexEntry struct {
	key    []any
	docIdx int
	// missing marks key components the document does not have, they are
	// stored as null so they sort like one
	missing []bool
}

// index keeps the keys of a secondary index sorted, ties broken by
// insertion order. Every document is indexed, fields it lacks included.
type index struct {
	name    string
	fields  []planner.Row
	entries []indexEntry
}

func newIndex(name string) *index {
	fieldNames := planner.IndexFields(name)
	fields := make([]planner.Row, 0, len(fieldNames))
	for _, aField := range fieldNames {
		fields = append(fields, planner.NewRow(aField))
	}
	return &index{
		name:   name,
		fields: fields,
	}
}

func (idx *index) keyOf(doc planner.Document) ([]any, []bool) {
	var (
		key     = make([]any, 0, len(idx.fields))
		missing []bool
	)
	for i, aField := range idx.fields {
		value, ok := aField.Lookup(doc)
		if !ok {
			if missing == nil {
				missing = make([]bool, len(idx.fields))
			}
			missing[i] = true
		}
		key = append(key, value)
	}
	return key, missing
}

func (idx *index) insert(doc planner.Document, docIdx int) {
	key, missing := idx.keyOf(doc)
	anEntry := indexEntry{key: key, docIdx: docIdx, missing: missing}
	pos, _ := slices.BinarySearchFunc(idx.entries, anEntry, compareEntries)
	idx.entries = slices.Insert(idx.entries, pos, anEntry)
}

func compareEntries(a, b indexEntry) int {
	if cmp := planner.CompareTuples(a.key, b.key); cmp != 0 {
		return cmp
	}
	return a.docIdx - b.docIdx
}

// FindDocs returns positions of documents whose key starts with the tuple.
func (idx *index) FindDocs(ctx context.Context, key []any) ([]int, error) {
	var docs []int
	upper := append(make([]any, 0, len(key)+1), key...)
	err := idx.ScanRange(ctx, planner.RangeCondition{
		Lower: planner.RangeBound{Key: key, Inclusive: true},
		Upper: planner.RangeBound{Key: append(upper, planner.MaxKey), Inclusive: true},
	}, false, func(_ []any, docIdx int) error {
		docs = append(docs, docIdx)
		return nil
	})
	return docs, err
}

// ScanRange visits keys within the range in index order, or in reverse.
// Returning io.EOF from the callback stops the scan without an error.
func (idx *index) ScanRange(ctx context.Context, rangeCondition planner.RangeCondition, reverse bool, callback indexScanner) error {
	start := sort.Search(len(idx.entries), func(i int) bool {
		cmp := planner.CompareTuples(idx.entries[i].key, rangeCondition.Lower.Key)
		if rangeCondition.Lower.Inclusive {
			return cmp >= 0
		}
		return cmp > 0
	})
	end := sort.Search(len(idx.entries), func(i int) bool {
		cmp := planner.CompareTuples(idx.entries[i].key, rangeCondition.Upper.Key)
		if rangeCondition.Upper.Inclusive {
			return cmp > 0
		}
		return cmp >= 0
	})
	if start >= end {
		return nil
	}

	visit := func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		anEntry := idx.entries[i]
		if anEntry.missing != nil && !admitsMissing(rangeCondition, anEntry.missing) {
			return nil
		}
		return callback(anEntry.key, anEntry.docIdx)
	}

	if reverse {
		for i := end - 1; i >= start; i-- {
			if err := visit(i); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
		return nil
	}

	for i := start; i < end; i++ {
		if err := visit(i); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// admitsMissing reports whether an entry with missing key components
// belongs to the range. A missing component only matches where the range
// leaves it unbounded on both sides. Components after the first one whose
// bounds differ are not constrained by the range at all.
func admitsMissing(rangeCondition planner.RangeCondition, missing []bool) bool {
	for i, isMissing := range missing {
		lower := componentAt(rangeCondition.Lower.Key, i, planner.MinKey)
		upper := componentAt(rangeCondition.Upper.Key, i, planner.MaxKey)
		if isMissing && !(lower == planner.MinKey && upper == planner.MaxKey) {
			return false
		}
		if !planner.Equal(lower, upper) {
			return true
		}
	}
	return true
}

// componentAt returns the i-th component of a bound key, or the sentinel
// when the key is a shorter prefix.
func componentAt(key []any, i int, fallback planner.Sentinel) any {
	if i < len(key) {
		return key[i]
	}
	return fallback
}
