package planner

import (
	"fmt"
)

// indexScan is the outcome of building index keys and bounds for the
// statements on a selected index.
type indexScan struct {
	scan Scan
	// residual holds indexed statements the scan could not absorb, they are
	// evaluated as row filters instead
	residual []Statement
	// rangeAt is the position of the first range component, -1 when the
	// scan is a point lookup
	rangeAt int
}

// buildIndexScan turns the statements on the fields of the selected index
// into either a point lookup over every key tuple or a single range scan.
//
// Every component up to the last constrained one gets a key or a bound:
// components without a statement are treated as an unconstrained range.
// The order field, when set, counts as constrained. Point lookup keys may
// therefore be a prefix of the index key. Keys are expanded as a cartesian
// product of the values each component allows, for example:
//
// a IN (1, 2) AND b = 5
//
// on index a:b becomes a point lookup for keys (1, 5) and (2, 5). Once a
// component is constrained by a range, later components cannot narrow the
// scan any further in a lexicographically ordered index, so they are padded
// with sentinels and their statements are kept as filters. An IN list with
// several values after the range would still need several key tuples and is
// rejected like an IN list before it.
func buildIndexScan(selection Selection, statements []Statement, orderField string) (indexScan, error) {
	var (
		fields    = selection.Fields()
		byField   = make(map[string][]Statement, len(fields))
		inIndex   = make(map[string]struct{}, len(fields))
		result    = indexScan{rangeAt: -1}
		lowerKeys = [][]any{{}}
		upperKeys = [][]any{{}}
		lower     = sideBound{value: MinKey, inclusive: true}
		upper     = sideBound{value: MaxKey, inclusive: true}
	)
	for _, aField := range fields {
		inIndex[aField] = struct{}{}
	}
	for _, aStatement := range statements {
		if _, ok := inIndex[aStatement.Field()]; !ok {
			result.residual = append(result.residual, aStatement)
			continue
		}
		byField[aStatement.Field()] = append(byField[aStatement.Field()], aStatement)
	}

	last := -1
	for i, aField := range fields {
		if _, ok := byField[aField]; ok || aField == orderField {
			last = i
		}
	}

	for i, aField := range fields {
		fieldStatements := byField[aField]

		if result.rangeAt < 0 && i > last {
			break
		}

		if result.rangeAt >= 0 {
			if err := singleKeyAfterRange(aField, fieldStatements); err != nil {
				return indexScan{}, err
			}
			result.residual = append(result.residual, fieldStatements...)
			lowerKeys = appendToAll(lowerKeys, trailingLower(lower))
			upperKeys = appendToAll(upperKeys, trailingUpper(upper))
			continue
		}

		point, others := splitPointStatement(fieldStatements)
		if point != nil {
			if point.Type == IsIn && hasRangeStatement(others) {
				return indexScan{}, newBuildError(ErrMultipleKeysWithBetween, aField, "IN combined with a range on the same field")
			}
			result.residual = append(result.residual, others...)

			values, err := pointValues(*point)
			if err != nil {
				return indexScan{}, err
			}
			lowerKeys = cartesian(lowerKeys, values)
			upperKeys = cartesian(upperKeys, values)
			continue
		}

		var err error
		lower, upper, err = indexBounds(aField, fieldStatements)
		if err != nil {
			return indexScan{}, err
		}
		// Sentinel bounds scan every key, missing fields included, so the
		// statements still have to be checked row by row
		if !lower.set && !upper.set {
			result.residual = append(result.residual, fieldStatements...)
		}
		result.rangeAt = i
		lowerKeys = appendToAll(lowerKeys, lower.value)
		upperKeys = appendToAll(upperKeys, upper.value)
	}

	result.scan = Scan{
		Index:  selection.Index,
		Fields: fields,
	}

	// A point lookup, or an IN over an empty list which can never match
	if result.rangeAt < 0 || len(lowerKeys) == 0 {
		result.scan.Type = ScanTypePointLookup
		result.scan.Keys = lowerKeys
		return result, nil
	}

	if len(lowerKeys) > 1 {
		return indexScan{}, newBuildError(ErrMultipleKeysWithBetween, fields[result.rangeAt],
			fmt.Sprintf("%d key tuples precede the range", len(lowerKeys)))
	}

	result.scan.Type = ScanTypeRangeScan
	result.scan.Range = RangeCondition{
		Lower: RangeBound{Key: lowerKeys[0], Inclusive: lower.inclusive},
		Upper: RangeBound{Key: upperKeys[0], Inclusive: upper.inclusive},
	}
	return result, nil
}

type sideBound struct {
	value     any
	inclusive bool
	set       bool
}

// indexBounds merges the range statements on one field into a single lower
// and upper bound. Sides no statement constrains are closed and unbounded.
// Statements that disagree on whether a side is inclusive are rejected
// rather than guessed at.
func indexBounds(field string, statements []Statement) (sideBound, sideBound, error) {
	var (
		lower = sideBound{value: MinKey, inclusive: true}
		upper = sideBound{value: MaxKey, inclusive: true}
	)

	setLower := func(value any, inclusive bool) error {
		if aSentinel, ok := value.(Sentinel); ok && aSentinel == MinKey {
			return nil
		}
		if lower.set && lower.inclusive != inclusive {
			return newBuildError(ErrInconsistentBounds, field, "lower bound")
		}
		if !lower.set || Compare(value, lower.value) > 0 {
			lower.value = value
		}
		lower.inclusive = inclusive
		lower.set = true
		return nil
	}
	setUpper := func(value any, inclusive bool) error {
		if aSentinel, ok := value.(Sentinel); ok && aSentinel == MaxKey {
			return nil
		}
		if upper.set && upper.inclusive != inclusive {
			return newBuildError(ErrInconsistentBounds, field, "upper bound")
		}
		if !upper.set || Compare(value, upper.value) < 0 {
			upper.value = value
		}
		upper.inclusive = inclusive
		upper.set = true
		return nil
	}

	for _, aStatement := range statements {
		var err error
		switch aStatement.Type {
		case Ge:
			err = setLower(aStatement.Right.Value, true)
		case Gt:
			err = setLower(aStatement.Right.Value, false)
		case Le:
			err = setUpper(aStatement.Right.Value, true)
		case Lt:
			err = setUpper(aStatement.Right.Value, false)
		case Bound:
			interval := aStatement.Right.Value.(Interval)
			if err = setLower(interval.LeftBound, interval.LeftClose); err == nil {
				err = setUpper(interval.RightBound, interval.RightClose)
			}
		default:
			return sideBound{}, sideBound{}, newBuildError(ErrUnsupportedStatement, field,
				fmt.Sprintf("%s is not a range statement", aStatement.Type))
		}
		if err != nil {
			return sideBound{}, sideBound{}, err
		}
	}

	return lower, upper, nil
}

// splitPointStatement returns the first Eq or IN statement and everything else.
func splitPointStatement(statements []Statement) (*Statement, []Statement) {
	var (
		point  *Statement
		others = make([]Statement, 0, len(statements))
	)
	for i, aStatement := range statements {
		if point == nil && (aStatement.Type == Eq || aStatement.Type == IsIn) {
			point = &statements[i]
			continue
		}
		others = append(others, aStatement)
	}
	return point, others
}

// singleKeyAfterRange rejects IN lists on components after the range: each
// value would need its own key tuple and a range scan has only one.
func singleKeyAfterRange(field string, statements []Statement) error {
	for _, aStatement := range statements {
		if aStatement.Type != IsIn {
			continue
		}
		values, err := pointValues(aStatement)
		if err != nil {
			return err
		}
		if len(values) > 1 {
			return newBuildError(ErrMultipleKeysWithBetween, field,
				fmt.Sprintf("%d key tuples follow the range", len(values)))
		}
	}
	return nil
}

func hasRangeStatement(statements []Statement) bool {
	for _, aStatement := range statements {
		if aStatement.Type.IsRange() {
			return true
		}
	}
	return false
}

// pointValues lists the distinct key values a point statement allows.
func pointValues(aStatement Statement) ([]any, error) {
	if aStatement.Type == Eq {
		return []any{aStatement.Right.Value}, nil
	}

	list, ok := aStatement.Right.Value.([]any)
	if !ok {
		return nil, newBuildError(ErrInvalidOperand, aStatement.Field(), "IN expects a list")
	}
	values := make([]any, 0, len(list))
	for _, aValue := range list {
		duplicate := false
		for _, existing := range values {
			if Equal(existing, aValue) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			values = append(values, aValue)
		}
	}
	return values, nil
}

// cartesian extends every tuple with every value.
func cartesian(tuples [][]any, values []any) [][]any {
	product := make([][]any, 0, len(tuples)*len(values))
	for _, aTuple := range tuples {
		for _, aValue := range values {
			extended := make([]any, len(aTuple), len(aTuple)+1)
			copy(extended, aTuple)
			product = append(product, append(extended, aValue))
		}
	}
	return product
}

func appendToAll(tuples [][]any, value any) [][]any {
	return cartesian(tuples, []any{value})
}

// After an inclusive lower bound every suffix must be admitted, after an
// exclusive one every suffix must be skipped.
func trailingLower(lower sideBound) any {
	if lower.inclusive {
		return MinKey
	}
	return MaxKey
}

func trailingUpper(upper sideBound) any {
	if upper.inclusive {
		return MaxKey
	}
	return MinKey
}
