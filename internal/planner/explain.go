package planner

import (
	"fmt"
	"strings"
)

func (s Scan) String() string {
	switch s.Type {
	case ScanTypePointLookup:
		keys := make([]string, 0, len(s.Keys))
		for _, aKey := range s.Keys {
			keys = append(keys, formatTuple(aKey))
		}
		return fmt.Sprintf("%s index=%s keys=[%s]", s.Type, s.Index, strings.Join(keys, ", "))
	case ScanTypeRangeScan:
		return fmt.Sprintf("%s index=%s range=%s", s.Type, s.Index, s.Range)
	case ScanTypeIndexOrdered:
		return fmt.Sprintf("%s index=%s direction=%s range=%s", s.Type, s.Index, s.Direction, s.Range)
	default:
		return "table"
	}
}

func (r RangeCondition) String() string {
	left, right := "(", ")"
	if r.Lower.Inclusive {
		left = "["
	}
	if r.Upper.Inclusive {
		right = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", left, formatTuple(r.Lower.Key), formatTuple(r.Upper.Key), right)
}

func (s SortSpec) String() string {
	keys := make([]string, 0, len(s.Keys))
	for _, aKey := range s.Keys {
		keys = append(keys, fmt.Sprintf("%s %s", aKey.Field, aKey.Direction))
	}
	if s.Index == "" {
		return strings.Join(keys, ", ")
	}
	return fmt.Sprintf("%s using index=%s(%d)", strings.Join(keys, ", "), s.Index, s.IndexKeys)
}

// String renders the plan one operation per line, in execution order.
func (p QueryPlan) String() string {
	lines := []string{"SCAN " + p.Scan.String()}
	for _, aFilter := range p.Filters {
		lines = append(lines, "FILTER "+aFilter.String())
	}
	if p.Sort != nil {
		lines = append(lines, "SORT "+p.Sort.String())
	}
	return strings.Join(lines, "\n")
}

// String renders the plan followed by the sampling operations left to the
// emitter.
func (r Result) String() string {
	lines := []string{r.Plan.String()}
	for _, anOperation := range r.Sampling {
		lines = append(lines, "THEN "+anOperation.String())
	}
	return strings.Join(lines, "\n")
}

func formatTuple(tuple []any) string {
	parts := make([]string, 0, len(tuple))
	for _, aValue := range tuple {
		parts = append(parts, formatValue(aValue))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
