package querydoc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/RichardKnop/docplan/internal/planner"
)

type Interval struct {
	Left       any  `yaml:"left"`
	Right      any  `yaml:"right"`
	LeftClose  bool `yaml:"left_close"`
	RightClose bool `yaml:"right_close"`
}

// Filter is one statement of a query. Any holds alternatives instead of a
// comparison.
type Filter struct {
	Field    string    `yaml:"field"`
	Op       string    `yaml:"op"`
	Value    any       `yaml:"value"`
	Values   []any     `yaml:"values"`
	Interval *Interval `yaml:"interval"`
	Pattern  string    `yaml:"pattern"`
	Row      string    `yaml:"row"`
	Any      []Filter  `yaml:"any"`
}

type Order struct {
	Field     string `yaml:"field"`
	Direction string `yaml:"direction"`
}

// Query is a filter conjunction followed by ordering, skip and limit.
type Query struct {
	Filter  []Filter `yaml:"filter"`
	OrderBy []Order  `yaml:"order_by"`
	Skip    *int     `yaml:"skip"`
	Limit   *int     `yaml:"limit"`
}

func LoadQuery(path string) (Query, error) {
	var query Query
	if err := loadYAML(path, &query); err != nil {
		return Query{}, err
	}
	return query, nil
}

var statementTypes = map[string]planner.StatementType{
	"eq":    planner.Eq,
	"ne":    planner.Ne,
	"ge":    planner.Ge,
	"gt":    planner.Gt,
	"le":    planner.Le,
	"lt":    planner.Lt,
	"isin":  planner.IsIn,
	"bound": planner.Bound,
	"match": planner.Match,
}

// Ast converts the query into a planner AST. Order marks take their index
// flag from the model. Every invalid filter is reported.
func (q Query) Ast(model *planner.Model) (planner.QueryAst, error) {
	var (
		ast  planner.QueryAst
		errs error
	)
	for i, aFilter := range q.Filter {
		aStatement, err := aFilter.statement()
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "filter %d", i))
			continue
		}
		ast.Statements = append(ast.Statements, aStatement)
	}

	if len(q.OrderBy) > 0 {
		orderBy := planner.OrderBy{Marks: make([]planner.OrderMark, 0, len(q.OrderBy))}
		for i, anOrder := range q.OrderBy {
			direction, err := parseDirection(anOrder.Direction)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "order_by %d", i))
				continue
			}
			if anOrder.Field == "" {
				errs = multierr.Append(errs, fmt.Errorf("order_by %d: field is required", i))
				continue
			}
			row := planner.NewRow(anOrder.Field)
			orderBy.Marks = append(orderBy.Marks, planner.OrderMark{
				Row:               row,
				Direction:         direction,
				HasSecondaryIndex: !row.Nested() && model.HasSecondaryIndex(row.Name()),
			})
		}
		ast.Sampling = append(ast.Sampling, orderBy)
	}
	if q.Skip != nil {
		ast.Sampling = append(ast.Sampling, planner.Skip{N: *q.Skip})
	}
	if q.Limit != nil {
		ast.Sampling = append(ast.Sampling, planner.Limit{N: *q.Limit})
	}

	if errs != nil {
		return planner.QueryAst{}, errs
	}
	return ast, nil
}

func (f Filter) statement() (planner.FilterStatement, error) {
	if len(f.Any) > 0 {
		alternatives := make([]planner.FilterStatement, 0, len(f.Any))
		for _, anAlternative := range f.Any {
			aStatement, err := anAlternative.statement()
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, aStatement)
		}
		return planner.AnyOf{Statements: alternatives}, nil
	}

	if f.Field == "" {
		return nil, fmt.Errorf("field is required")
	}
	statementType, ok := statementTypes[strings.ToLower(f.Op)]
	if !ok {
		return nil, fmt.Errorf("unknown op %q", f.Op)
	}

	if f.Row != "" {
		return planner.FieldComparedTo(f.Field, statementType, f.Row), nil
	}

	switch statementType {
	case planner.IsIn:
		if f.Values == nil {
			return nil, fmt.Errorf("isin on %s requires values or row", f.Field)
		}
		return planner.FieldIsInAny(f.Field, f.Values...), nil
	case planner.Bound:
		if f.Interval == nil {
			return nil, fmt.Errorf("bound on %s requires an interval", f.Field)
		}
		left, right := f.Interval.Left, f.Interval.Right
		if left == nil {
			left = planner.MinKey
		}
		if right == nil {
			right = planner.MaxKey
		}
		interval, err := planner.NewInterval(left, right, f.Interval.LeftClose, f.Interval.RightClose)
		if err != nil {
			return nil, err
		}
		return planner.FieldIsBetween(f.Field, interval), nil
	case planner.Match:
		return planner.FieldMatches(f.Field, f.Pattern), nil
	default:
		return planner.FieldIs(f.Field, statementType, f.Value), nil
	}
}

func parseDirection(direction string) (planner.Direction, error) {
	switch strings.ToLower(direction) {
	case "", "asc":
		return planner.Asc, nil
	case "desc":
		return planner.Desc, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", direction)
	}
}
