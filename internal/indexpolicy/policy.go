package indexpolicy

import (
	"fmt"

	"github.com/RichardKnop/docplan/internal/planner"
)

// Index is a physical secondary index over an ordered list of fields.
type Index struct {
	Fields []string
}

func NewIndex(fields ...string) Index {
	return Index{Fields: fields}
}

// ParseIndex builds an index from its colon delimited name.
func ParseIndex(name string) Index {
	return Index{Fields: planner.IndexFields(name)}
}

func (i Index) Name() string {
	return planner.IndexName(i.Fields...)
}

// Policy picks, among a fixed set of indexes, the one whose leading fields
// cover most of the candidate fields.
type Policy struct {
	indexes []Index
}

func New(indexes ...Index) *Policy {
	p := &Policy{
		indexes: make([]Index, 0, len(indexes)),
	}
	for _, anIndex := range indexes {
		if len(anIndex.Fields) == 0 {
			continue
		}
		p.indexes = append(p.indexes, Index{Fields: append([]string(nil), anIndex.Fields...)})
	}
	return p
}

func (p *Policy) Indexes() []Index {
	return p.indexes
}

type candidateIndex struct {
	index   Index
	matched int
	ordered bool
}

// better reports whether c should be preferred over other. Indexes that
// serve the requested ordering win, then indexes covering more candidates,
// then shorter indexes, then the lexicographically smaller name.
func (c candidateIndex) better(other candidateIndex) bool {
	if c.ordered != other.ordered {
		return c.ordered
	}
	if c.matched != other.matched {
		return c.matched > other.matched
	}
	if len(c.index.Fields) != len(other.index.Fields) {
		return len(c.index.Fields) < len(other.index.Fields)
	}
	return c.index.Name() < other.index.Name()
}

// Select implements planner.IndexSelector. An index can serve a candidate
// only if every field before it in the index is a candidate too. When
// ordered is set, the first candidate is the field the caller wants rows
// ordered by.
func (p *Policy) Select(candidates []string, ordered bool) (planner.Selection, error) {
	if len(candidates) == 0 {
		return planner.Selection{}, nil
	}

	wanted := make(map[string]struct{}, len(candidates))
	for _, aField := range candidates {
		if aField == "" {
			return planner.Selection{}, fmt.Errorf("empty candidate field name")
		}
		wanted[aField] = struct{}{}
	}

	var (
		best  candidateIndex
		found bool
	)
	for _, anIndex := range p.indexes {
		matched := 0
		for _, aField := range anIndex.Fields {
			if _, ok := wanted[aField]; !ok {
				break
			}
			matched += 1
		}
		if matched == 0 {
			continue
		}

		aCandidate := candidateIndex{
			index:   anIndex,
			matched: matched,
			ordered: ordered && containsField(anIndex.Fields[:matched], candidates[0]),
		}
		if !found || aCandidate.better(best) {
			best, found = aCandidate, true
		}
	}

	if !found {
		return planner.Selection{Uncovered: distinct(candidates, nil)}, nil
	}

	return planner.Selection{
		Index:     best.index.Name(),
		Uncovered: distinct(candidates, best.index.Fields[:best.matched]),
	}, nil
}

// distinct returns candidates not present in covered, without duplicates,
// in candidate order.
func distinct(candidates, covered []string) []string {
	var (
		seen   = make(map[string]struct{}, len(candidates))
		result []string
	)
	for _, aField := range covered {
		seen[aField] = struct{}{}
	}
	for _, aField := range candidates {
		if _, ok := seen[aField]; ok {
			continue
		}
		seen[aField] = struct{}{}
		result = append(result, aField)
	}
	return result
}

func containsField(fields []string, field string) bool {
	for _, aField := range fields {
		if aField == field {
			return true
		}
	}
	return false
}
