package planner

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate is a boolean test applied to each row returned by the scan.
type Predicate interface {
	Eval(doc Document) bool
	fmt.Stringer
}

// Comparison compares a field to a literal or to another field. A missing
// field never satisfies a comparison.
type Comparison struct {
	Left     Row
	Operator StatementType
	Right    Operand
}

func (c Comparison) Eval(doc Document) bool {
	left, ok := c.Left.Lookup(doc)
	if !ok {
		return false
	}
	right := c.Right.Value
	if c.Right.IsRow() {
		right, ok = c.Right.Value.(Row).Lookup(doc)
		if !ok {
			return false
		}
	}

	cmp := Compare(left, right)
	switch c.Operator {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Ge:
		return cmp >= 0
	case Gt:
		return cmp > 0
	case Le:
		return cmp <= 0
	case Lt:
		return cmp < 0
	default:
		return false
	}
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Operator, c.Right)
}

// Contains holds when the field equals one of the values.
type Contains struct {
	Field  Row
	Values []any
}

func (c Contains) Eval(doc Document) bool {
	value, ok := c.Field.Lookup(doc)
	if !ok {
		return false
	}
	return containsValue(c.Values, value)
}

func (c Contains) String() string {
	return fmt.Sprintf("%s IN %s", c.Field, formatValue(c.Values))
}

// ContainedIn holds when the field is an element of the collection stored
// in another field of the same row.
type ContainedIn struct {
	Field      Row
	Collection Row
}

func (c ContainedIn) Eval(doc Document) bool {
	value, ok := c.Field.Lookup(doc)
	if !ok {
		return false
	}
	collection, ok := c.Collection.Lookup(doc)
	if !ok {
		return false
	}
	values, ok := collection.([]any)
	if !ok {
		return false
	}
	return containsValue(values, value)
}

func (c ContainedIn) String() string {
	return fmt.Sprintf("%s IN %s", c.Field, c.Collection)
}

// Matches tests a string field against a regular expression.
type Matches struct {
	Field   Row
	Pattern string
	re      *regexp.Regexp
}

func NewMatches(field Row, pattern string) (Matches, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matches{}, newBuildError(ErrInvalidPattern, field.Name(), err.Error())
	}
	return Matches{
		Field:   field,
		Pattern: pattern,
		re:      re,
	}, nil
}

func (m Matches) Eval(doc Document) bool {
	value, ok := m.Field.Lookup(doc)
	if !ok {
		return false
	}
	text, ok := value.(string)
	if !ok || m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

func (m Matches) String() string {
	return fmt.Sprintf("%s MATCH %q", m.Field, m.Pattern)
}

type And struct {
	Predicates []Predicate
}

func (a And) Eval(doc Document) bool {
	for _, aPredicate := range a.Predicates {
		if !aPredicate.Eval(doc) {
			return false
		}
	}
	return true
}

func (a And) String() string {
	return joinPredicates(a.Predicates, " AND ")
}

type Or struct {
	Predicates []Predicate
}

func (o Or) Eval(doc Document) bool {
	for _, aPredicate := range o.Predicates {
		if aPredicate.Eval(doc) {
			return true
		}
	}
	return false
}

func (o Or) String() string {
	return joinPredicates(o.Predicates, " OR ")
}

// EvalAll reports whether the document satisfies every predicate.
func EvalAll(predicates []Predicate, doc Document) bool {
	return And{Predicates: predicates}.Eval(doc)
}

// buildFilters converts every statement the scan did not absorb into a row
// predicate. The predicates are ANDed together by the emitter.
func buildFilters(complicated []FilterStatement, groups ...[]Statement) ([]Predicate, error) {
	total := len(complicated)
	for _, aGroup := range groups {
		total += len(aGroup)
	}
	if total == 0 {
		return nil, nil
	}

	filters := make([]Predicate, 0, total)
	for _, aFilter := range complicated {
		aPredicate, err := BuildPredicate(aFilter)
		if err != nil {
			return nil, err
		}
		filters = append(filters, aPredicate)
	}
	for _, aGroup := range groups {
		for _, aStatement := range aGroup {
			aPredicate, err := BuildPredicate(aStatement)
			if err != nil {
				return nil, err
			}
			filters = append(filters, aPredicate)
		}
	}
	return filters, nil
}

// BuildPredicate converts a filter statement into a row predicate.
func BuildPredicate(aFilter FilterStatement) (Predicate, error) {
	switch typed := aFilter.(type) {
	case Statement:
		return statementPredicate(typed)
	case AnyOf:
		alternatives := make([]Predicate, 0, len(typed.Statements))
		for _, aStatement := range typed.Statements {
			aPredicate, err := BuildPredicate(aStatement)
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, aPredicate)
		}
		return Or{Predicates: alternatives}, nil
	default:
		return nil, newBuildError(ErrUnsupportedStatement, "", fmt.Sprintf("%T", aFilter))
	}
}

func statementPredicate(aStatement Statement) (Predicate, error) {
	field := aStatement.Field()
	switch aStatement.Type {
	case Eq, Ne, Ge, Gt, Le, Lt:
		if aStatement.Right.Type != OperandLiteral && aStatement.Right.Type != OperandRow {
			return nil, newBuildError(ErrInvalidOperand, field, fmt.Sprintf("%s expects a value or a row", aStatement.Type))
		}
		return Comparison{
			Left:     aStatement.Left,
			Operator: aStatement.Type,
			Right:    aStatement.Right,
		}, nil
	case IsIn:
		if collection, ok := aStatement.Right.Value.(Row); ok && aStatement.Right.IsRow() {
			return ContainedIn{Field: aStatement.Left, Collection: collection}, nil
		}
		values, ok := aStatement.Right.Value.([]any)
		if !ok || aStatement.Right.Type != OperandList {
			return nil, newBuildError(ErrInvalidOperand, field, "IN expects a list or a row")
		}
		return Contains{Field: aStatement.Left, Values: values}, nil
	case Bound:
		interval, ok := aStatement.Right.Value.(Interval)
		if !ok || aStatement.Right.Type != OperandInterval {
			return nil, newBuildError(ErrInvalidOperand, field, "BETWEEN expects an interval")
		}
		lowerOperator, upperOperator := Gt, Lt
		if interval.LeftClose {
			lowerOperator = Ge
		}
		if interval.RightClose {
			upperOperator = Le
		}
		return And{Predicates: []Predicate{
			Comparison{
				Left:     aStatement.Left,
				Operator: lowerOperator,
				Right:    Operand{Type: OperandLiteral, Value: interval.LeftBound},
			},
			Comparison{
				Left:     aStatement.Left,
				Operator: upperOperator,
				Right:    Operand{Type: OperandLiteral, Value: interval.RightBound},
			},
		}}, nil
	case Match:
		pattern, ok := aStatement.Right.Value.(string)
		if !ok || aStatement.Right.Type != OperandLiteral {
			return nil, newBuildError(ErrInvalidOperand, field, "MATCH expects a string pattern")
		}
		return NewMatches(aStatement.Left, pattern)
	default:
		return nil, newBuildError(ErrUnsupportedStatement, field, aStatement.Type.String())
	}
}

func containsValue(values []any, value any) bool {
	for _, aValue := range values {
		if Equal(aValue, value) {
			return true
		}
	}
	return false
}

func joinPredicates(predicates []Predicate, separator string) string {
	parts := make([]string, 0, len(predicates))
	for _, aPredicate := range predicates {
		parts = append(parts, aPredicate.String())
	}
	return "(" + strings.Join(parts, separator) + ")"
}
