package planner

import (
	"fmt"
	"strings"
)

type StatementType int

const (
	// Eq -> "="
	Eq StatementType = iota + 1
	// Ne -> "!="
	Ne
	// Ge -> ">="
	Ge
	// Gt -> ">"
	Gt
	// Le -> "<="
	Le
	// Lt -> "<"
	Lt
	// IsIn -> "IN (...)"
	IsIn
	// Bound -> value within an interval
	Bound
	// Match -> regular expression test
	Match
)

func (s StatementType) String() string {
	switch s {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Ge:
		return ">="
	case Gt:
		return ">"
	case Le:
		return "<="
	case Lt:
		return "<"
	case IsIn:
		return "IN"
	case Bound:
		return "BETWEEN"
	case Match:
		return "MATCH"
	default:
		return "UNKNOWN"
	}
}

// IsRange reports whether the statement type constrains an index by a bound
// rather than by exact keys.
func (s StatementType) IsRange() bool {
	switch s {
	case Ge, Gt, Le, Lt, Bound:
		return true
	default:
		return false
	}
}

// Row references a document field, optionally through nested objects.
type Row struct {
	Path []string
}

// NewRow builds a row reference from a dotted path such as "address.city".
func NewRow(path string) Row {
	return Row{Path: strings.Split(path, ".")}
}

// Name returns the leaf field name.
func (r Row) Name() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// Nested reports whether the row reaches into a structured field.
func (r Row) Nested() bool {
	return len(r.Path) > 1
}

// Equal reports whether both rows name the same leaf field.
func (r Row) Equal(other Row) bool {
	return r.Name() == other.Name()
}

func (r Row) String() string {
	return strings.Join(r.Path, ".")
}

// Lookup resolves the row against a document. Missing fields, and paths
// that cross a non-object value, are reported as not found.
func (r Row) Lookup(doc Document) (any, bool) {
	if len(r.Path) == 0 {
		return nil, false
	}
	var current any = map[string]any(doc)
	for _, segment := range r.Path {
		object, ok := current.(map[string]any)
		if !ok {
			if typed, isDoc := current.(Document); isDoc {
				object = typed
			} else {
				return nil, false
			}
		}
		current, ok = object[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Document is a single stored row.
type Document map[string]any

// Interval is a lower/upper bound pair with independent inclusive flags.
type Interval struct {
	LeftBound  any
	RightBound any
	LeftClose  bool
	RightClose bool
}

// NewInterval validates that the left bound does not sort after the right one.
func NewInterval(left, right any, leftClose, rightClose bool) (Interval, error) {
	if Compare(left, right) > 0 {
		return Interval{}, newBuildError(ErrInvalidInterval, "",
			fmt.Sprintf("left bound %s is greater than right bound %s", formatValue(left), formatValue(right)))
	}
	return Interval{
		LeftBound:  left,
		RightBound: right,
		LeftClose:  leftClose,
		RightClose: rightClose,
	}, nil
}

func (i Interval) String() string {
	left, right := "(", ")"
	if i.LeftClose {
		left = "["
	}
	if i.RightClose {
		right = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", left, formatValue(i.LeftBound), formatValue(i.RightBound), right)
}

type OperandType int

const (
	OperandLiteral OperandType = iota + 1
	OperandList
	OperandInterval
	OperandRow
)

// Operand is the right hand side of a statement. Value holds a literal,
// a []any, an Interval or a Row depending on Type.
type Operand struct {
	Type  OperandType
	Value any
}

// IsRow determines whether the operand references another field
func (o Operand) IsRow() bool {
	return o.Type == OperandRow
}

func (o Operand) String() string {
	switch o.Type {
	case OperandRow:
		return o.Value.(Row).String()
	case OperandInterval:
		return o.Value.(Interval).String()
	default:
		return formatValue(o.Value)
	}
}

// FilterStatement is one conjunct of a query. Only types in this package
// implement it.
type FilterStatement interface {
	isFilterStatement()
	fmt.Stringer
}

// Statement compares a field against a literal, a list, an interval or
// another field.
type Statement struct {
	Left        Row
	Type        StatementType
	Right       Operand
	Complicated bool
}

func (Statement) isFilterStatement() {}

func (s Statement) String() string {
	return fmt.Sprintf("%s %s %s", s.Left, s.Type, s.Right)
}

// Field returns the leaf name of the statement's left hand side.
func (s Statement) Field() string {
	return s.Left.Name()
}

// AnyOf holds when at least one of its statements holds.
type AnyOf struct {
	Statements []FilterStatement
}

func (AnyOf) isFilterStatement() {}

func (a AnyOf) String() string {
	parts := make([]string, 0, len(a.Statements))
	for _, aStatement := range a.Statements {
		parts = append(parts, aStatement.String())
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func FieldIs(field string, statementType StatementType, value any) Statement {
	return Statement{
		Left: NewRow(field),
		Type: statementType,
		Right: Operand{
			Type:  OperandLiteral,
			Value: value,
		},
	}
}

func FieldIsEqual(field string, value any) Statement {
	return FieldIs(field, Eq, value)
}

func FieldIsNotEqual(field string, value any) Statement {
	return FieldIs(field, Ne, value)
}

func FieldIsInAny(field string, values ...any) Statement {
	return Statement{
		Left: NewRow(field),
		Type: IsIn,
		Right: Operand{
			Type:  OperandList,
			Value: values,
		},
	}
}

func FieldIsBetween(field string, interval Interval) Statement {
	return Statement{
		Left: NewRow(field),
		Type: Bound,
		Right: Operand{
			Type:  OperandInterval,
			Value: interval,
		},
	}
}

func FieldMatches(field, pattern string) Statement {
	return Statement{
		Left: NewRow(field),
		Type: Match,
		Right: Operand{
			Type:  OperandLiteral,
			Value: pattern,
		},
	}
}

// FieldComparedTo compares two fields of the same document.
func FieldComparedTo(field string, statementType StatementType, otherField string) Statement {
	return Statement{
		Left: NewRow(field),
		Type: statementType,
		Right: Operand{
			Type:  OperandRow,
			Value: NewRow(otherField),
		},
	}
}
