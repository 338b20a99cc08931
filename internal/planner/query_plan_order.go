package planner

import (
	"go.uber.org/zap"
)

// planOrder builds the sort for an ordering the scan does not already
// produce.
func (c *Compiler) planOrder(model *Model, orderBy OrderBy) (*SortSpec, error) {
	sortSpec := &SortSpec{
		Keys: make([]SortKey, 0, len(orderBy.Marks)),
	}
	for _, aMark := range orderBy.Marks {
		direction := aMark.Direction
		if direction == 0 {
			direction = Asc
		}
		sortSpec.Keys = append(sortSpec.Keys, SortKey{
			Field:     aMark.Row.String(),
			Direction: direction,
		})
	}

	// Single column ORDER BY, the emitter may order by an index led by the
	// field
	if len(orderBy.Marks) == 1 {
		aMark := orderBy.Marks[0]
		if !aMark.HasSecondaryIndex || aMark.Row.Nested() {
			return sortSpec, nil
		}
		policy, err := indexPolicy(model)
		if err != nil {
			return nil, err
		}
		selection, err := policy.Select([]string{aMark.Row.Name()}, true)
		if err != nil {
			return nil, err
		}
		if indexFields := selection.Fields(); len(indexFields) > 0 && indexFields[0] == aMark.Row.Name() {
			sortSpec.Index = selection.Index
			sortSpec.IndexKeys = 1
		}
		return sortSpec, nil
	}

	// Multiple columns can only share an index when they all are indexed and
	// sorted in the same direction
	if !canShareIndex(orderBy.Marks) {
		return sortSpec, nil
	}

	policy, err := indexPolicy(model)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(orderBy.Marks))
	for _, aMark := range orderBy.Marks {
		fields = append(fields, aMark.Row.Name())
	}
	selection, err := policy.Select(fields, true)
	if err != nil {
		return nil, err
	}

	indexFields := selection.Fields()
	if !isLeadingPrefix(indexFields, fields) {
		c.logger.Debug("order by index does not match leading marks",
			zap.String("index", selection.Index),
			zap.Strings("marks", fields),
		)
		return sortSpec, nil
	}

	sortSpec.Index = selection.Index
	sortSpec.IndexKeys = len(indexFields)
	return sortSpec, nil
}

func canShareIndex(marks []OrderMark) bool {
	for _, aMark := range marks {
		if !aMark.HasSecondaryIndex || aMark.Row.Nested() {
			return false
		}
		if normalizedDirection(aMark.Direction) != normalizedDirection(marks[0].Direction) {
			return false
		}
	}
	return true
}

func normalizedDirection(direction Direction) Direction {
	if direction == Desc {
		return Desc
	}
	return Asc
}

// isLeadingPrefix checks that prefix is non-empty and equals the start of
// fields.
func isLeadingPrefix(prefix, fields []string) bool {
	if len(prefix) == 0 || len(prefix) > len(fields) {
		return false
	}
	for i := range prefix {
		if prefix[i] != fields[i] {
			return false
		}
	}
	return true
}
