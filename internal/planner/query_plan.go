package planner

import (
	"go.uber.org/zap"
)

type ScanType int

const (
	ScanTypeNone         ScanType = iota + 1 // No index, every row is filtered
	ScanTypePointLookup                      // Index lookup for specific key tuple(s)
	ScanTypeRangeScan                        // Index range scan between two key tuples
	ScanTypeIndexOrdered                     // Index range scan returning rows in index order
)

func (st ScanType) String() string {
	switch st {
	case ScanTypeNone:
		return "none"
	case ScanTypePointLookup:
		return "index_point"
	case ScanTypeRangeScan:
		return "index_range"
	case ScanTypeIndexOrdered:
		return "index_ordered"
	default:
		return "unknown"
	}
}

type RangeBound struct {
	Key       []any
	Inclusive bool // true for >= or <=, false for > or <
}

type RangeCondition struct {
	Lower RangeBound
	Upper RangeBound
}

// Scan is the index operation of a plan.
type Scan struct {
	Type      ScanType
	Index     string
	Fields    []string
	Keys      [][]any        // Key tuples for a point lookup
	Range     RangeCondition // Bounds for range and ordered scans
	Direction Direction      // Only set for ordered scans
}

// SortKey is one key of an explicit sort.
type SortKey struct {
	Field     string
	Direction Direction
}

// SortSpec describes the sort applied to rows after filtering. When Index
// is set, that index already orders rows by the first IndexKeys keys and
// the remaining keys break ties.
type SortSpec struct {
	Index     string
	IndexKeys int
	Keys      []SortKey
}

// QueryPlan determines how to execute a query: rows returned by Scan must
// satisfy every filter and are then sorted by Sort, if set.
type QueryPlan struct {
	Scan    Scan
	Filters []Predicate
	Sort    *SortSpec
}

// Result is a compiled query: the plan and the sampling operations the
// plan did not absorb, in their original order.
type Result struct {
	Plan     QueryPlan
	Sampling []SamplingOperation
}

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// Compiler turns query ASTs into plans. It holds no per query state and is
// safe for concurrent use.
type Compiler struct {
	logger *zap.Logger
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile creates a query plan based on the query and the model. The query
// is not modified, an ordering absorbed by the plan is left out of the
// returned sampling operations instead.
func (c *Compiler) Compile(model *Model, ast QueryAst) (Result, error) {
	var (
		groups   = classify(model, ast.Statements)
		plan     = QueryPlan{Scan: Scan{Type: ScanTypeNone}}
		residual []Statement
		sampling = append(make([]SamplingOperation, 0, len(ast.Sampling)), ast.Sampling...)
	)

	orderAt, orderBy, hasOrder := ast.plannableOrderBy()

	// First try an index that filters and orders at the same time
	subsumed := false
	if hasOrder && len(orderBy.Marks) == 1 && orderBy.Marks[0].HasSecondaryIndex && !orderBy.Marks[0].Row.Nested() {
		ordered, ok, err := c.tryOrderedScan(model, groups, orderBy.Marks[0])
		if err != nil {
			return Result{}, err
		}
		if ok {
			subsumed = true
			plan.Scan = ordered.scan
			groups = ordered.groups
			residual = ordered.residual
		}
	}

	if !subsumed && len(groups.indexed) > 0 {
		var err error
		plan.Scan, groups, residual, err = c.indexScan(model, groups)
		if err != nil {
			return Result{}, err
		}
	}

	if hasOrder {
		if !subsumed {
			sortSpec, err := c.planOrder(model, orderBy)
			if err != nil {
				return Result{}, err
			}
			plan.Sort = sortSpec
		}
		sampling = ast.withoutSampling(orderAt)
	}

	filters, err := buildFilters(groups.complicated, groups.notIndexed, residual)
	if err != nil {
		return Result{}, err
	}
	plan.Filters = filters

	c.logger.Debug("compiled query plan",
		zap.String("table", tableName(model)),
		zap.Stringer("scan", plan.Scan.Type),
		zap.String("index", plan.Scan.Index),
		zap.Int("filters", len(plan.Filters)),
		zap.Bool("sort", plan.Sort != nil),
	)

	return Result{Plan: plan, Sampling: sampling}, nil
}

type orderedScan struct {
	scan     Scan
	groups   classification
	residual []Statement
}

// tryOrderedScan asks for an index led by the order field's position. The
// index orders the output when every component before the order field is
// pinned to a single key and the order field is the scanned range.
func (c *Compiler) tryOrderedScan(model *Model, groups classification, mark OrderMark) (orderedScan, bool, error) {
	policy, err := indexPolicy(model)
	if err != nil {
		return orderedScan{}, false, err
	}

	var (
		orderField = mark.Row.Name()
		candidates = prependUnique(orderField, groups.candidateFields())
	)
	selection, err := policy.Select(candidates, true)
	if err != nil {
		return orderedScan{}, false, err
	}
	if selection.Index == "" {
		return orderedScan{}, false, nil
	}

	demoted := groups.demote(selection.Uncovered...)
	built, err := buildIndexScan(selection, demoted.indexed, orderField)
	if err != nil {
		// The order field may have added a range the keys cannot be
		// combined with, plan without it
		c.logger.Debug("ordered index scan rejected",
			zap.String("index", selection.Index),
			zap.Error(err),
		)
		return orderedScan{}, false, nil
	}

	if built.scan.Type != ScanTypeRangeScan || built.rangeAt < 0 || built.scan.Fields[built.rangeAt] != orderField {
		return orderedScan{}, false, nil
	}

	built.scan.Type = ScanTypeIndexOrdered
	built.scan.Direction = mark.Direction
	if built.scan.Direction == 0 {
		built.scan.Direction = Asc
	}
	return orderedScan{
		scan:     built.scan,
		groups:   demoted,
		residual: built.residual,
	}, true, nil
}

// indexScan selects an index for the indexed statements and builds keys or
// bounds for it. Statements the index does not cover are demoted to filters.
func (c *Compiler) indexScan(model *Model, groups classification) (Scan, classification, []Statement, error) {
	noScan := Scan{Type: ScanTypeNone}

	policy, err := indexPolicy(model)
	if err != nil {
		return noScan, groups, nil, err
	}

	candidates := groups.candidateFields()
	selection, err := policy.Select(candidates, false)
	if err != nil {
		return noScan, groups, nil, err
	}
	if selection.Index == "" {
		return noScan, groups.demote(candidates...), nil, nil
	}

	groups = groups.demote(selection.Uncovered...)
	if len(groups.indexed) == 0 {
		return noScan, groups, nil, nil
	}
	built, err := buildIndexScan(selection, groups.indexed, "")
	if err != nil {
		return noScan, groups, nil, err
	}
	return built.scan, groups, built.residual, nil
}

func indexPolicy(model *Model) (IndexSelector, error) {
	if model == nil {
		return nil, newBuildError(ErrNoModel, "", "")
	}
	if model.IndexPolicy == nil {
		return nil, newBuildError(ErrNoIndexPolicy, "", model.TableName)
	}
	return model.IndexPolicy, nil
}

func prependUnique(field string, fields []string) []string {
	result := make([]string, 0, len(fields)+1)
	result = append(result, field)
	for _, aField := range fields {
		if aField != field {
			result = append(result, aField)
		}
	}
	return result
}

func tableName(model *Model) string {
	if model == nil {
		return ""
	}
	return model.TableName
}
