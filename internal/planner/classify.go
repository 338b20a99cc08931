package planner

// classification partitions the top level conjunction of a query.
type classification struct {
	// complicated statements can only be evaluated row by row
	complicated []FilterStatement
	// indexed statements compare a secondary indexed field to literals
	indexed []Statement
	// notIndexed statements are simple but cannot drive an index
	notIndexed []Statement
}

// classify splits statements into complicated, indexed and not indexed
// groups. Statements are copied with their Complicated flag set, the input
// slice is left untouched.
func classify(model *Model, statements []FilterStatement) classification {
	var result classification
	for _, aFilter := range statements {
		aStatement, ok := aFilter.(Statement)
		if !ok {
			result.complicated = append(result.complicated, aFilter)
			continue
		}

		aStatement.Complicated = isComplicated(aStatement)
		if aStatement.Complicated {
			result.complicated = append(result.complicated, aStatement)
			continue
		}

		if model.HasSecondaryIndex(aStatement.Field()) && canDriveIndex(aStatement) {
			result.indexed = append(result.indexed, aStatement)
			continue
		}
		result.notIndexed = append(result.notIndexed, aStatement)
	}
	return result
}

func isComplicated(aStatement Statement) bool {
	if aStatement.Right.IsRow() {
		return true
	}
	if aStatement.Type == Match {
		return true
	}
	return aStatement.Left.Nested()
}

// canDriveIndex checks the statement can be turned into index keys or
// bounds. Inequality never can, and null is not an index key.
func canDriveIndex(aStatement Statement) bool {
	switch aStatement.Type {
	case Eq, Ge, Gt, Le, Lt:
		return aStatement.Right.Type == OperandLiteral && aStatement.Right.Value != nil
	case IsIn:
		values, ok := aStatement.Right.Value.([]any)
		if !ok || aStatement.Right.Type != OperandList {
			return false
		}
		for _, aValue := range values {
			if aValue == nil {
				return false
			}
		}
		return true
	case Bound:
		_, ok := aStatement.Right.Value.(Interval)
		return ok && aStatement.Right.Type == OperandInterval
	default:
		return false
	}
}

// demote moves the indexed statements on the given fields into the
// not indexed group.
func (c classification) demote(fields ...string) classification {
	if len(fields) == 0 {
		return c
	}
	demoted := make(map[string]struct{}, len(fields))
	for _, aField := range fields {
		demoted[aField] = struct{}{}
	}

	var (
		indexed    = make([]Statement, 0, len(c.indexed))
		notIndexed = append(make([]Statement, 0, len(c.notIndexed)+len(fields)), c.notIndexed...)
	)
	for _, aStatement := range c.indexed {
		if _, ok := demoted[aStatement.Field()]; ok {
			notIndexed = append(notIndexed, aStatement)
			continue
		}
		indexed = append(indexed, aStatement)
	}
	c.indexed = indexed
	c.notIndexed = notIndexed
	return c
}

// candidateFields lists the distinct fields of the indexed statements in
// statement order.
func (c classification) candidateFields() []string {
	var (
		seen       = make(map[string]struct{}, len(c.indexed))
		candidates = make([]string, 0, len(c.indexed))
	)
	for _, aStatement := range c.indexed {
		if _, ok := seen[aStatement.Field()]; ok {
			continue
		}
		seen[aStatement.Field()] = struct{}{}
		candidates = append(candidates, aStatement.Field())
	}
	return candidates
}
