package memstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/RichardKnop/docplan/internal/planner"
)

var (
	ErrUnknownIndex     = errors.New("unknown index")
	ErrUnknownScanType  = errors.New("unhandled scan type")
	ErrUnknownOperation = errors.New("unsupported sampling operation")
)

type Option func(*Collection)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Collection) {
		c.logger = logger
	}
}

// Collection is an in-memory document collection with compound secondary
// indexes. It executes compiled query plans the way a secondary index
// document store would.
type Collection struct {
	name    string
	logger  *zap.Logger
	docs    []planner.Document
	indexes map[string]*index
}

// New creates a collection with one secondary index per colon delimited
// index name, for example "first_name:last_name".
func New(name string, indexNames []string, opts ...Option) *Collection {
	c := &Collection{
		name:    name,
		logger:  zap.NewNop(),
		indexes: make(map[string]*index, len(indexNames)),
	}
	for _, anIndexName := range indexNames {
		c.indexes[anIndexName] = newIndex(anIndexName)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Len() int {
	return len(c.docs)
}

// Insert adds documents and indexes them.
func (c *Collection) Insert(docs ...planner.Document) {
	for _, aDoc := range docs {
		docIdx := len(c.docs)
		c.docs = append(c.docs, aDoc)
		for _, anIndex := range c.indexes {
			anIndex.insert(aDoc, docIdx)
		}
	}
}

// Execute runs the plan, then the residual sampling operations in order.
func (c *Collection) Execute(ctx context.Context, result planner.Result) ([]planner.Document, error) {
	plan := result.Plan

	docs := make([]planner.Document, 0, 16)
	err := c.scan(ctx, plan.Scan, func(aDoc planner.Document) error {
		if planner.EvalAll(plan.Filters, aDoc) {
			docs = append(docs, aDoc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Sugar().With(
		"collection", c.name,
		"scan", plan.Scan.Type.String(),
		"index", plan.Scan.Index,
		"matched", len(docs),
	).Debug("executed scan")

	if plan.Sort != nil {
		sortDocuments(docs, plan.Sort.Keys)
	}

	for _, anOperation := range result.Sampling {
		docs, err = applySampling(docs, anOperation)
		if err != nil {
			return nil, err
		}
	}

	return docs, nil
}

func (c *Collection) scan(ctx context.Context, aScan planner.Scan, callback func(planner.Document) error) error {
	switch aScan.Type {
	case planner.ScanTypeNone, 0:
		return c.sequentialScan(ctx, callback)
	case planner.ScanTypePointLookup:
		return c.indexPointScan(ctx, aScan, callback)
	case planner.ScanTypeRangeScan:
		return c.indexRangeScan(ctx, aScan, false, callback)
	case planner.ScanTypeIndexOrdered:
		return c.indexRangeScan(ctx, aScan, aScan.Direction == planner.Desc, callback)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownScanType, aScan.Type)
	}
}

func (c *Collection) sequentialScan(ctx context.Context, callback func(planner.Document) error) error {
	for _, aDoc := range c.docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(aDoc); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

func (c *Collection) indexPointScan(ctx context.Context, aScan planner.Scan, callback func(planner.Document) error) error {
	anIndex, ok := c.indexes[aScan.Index]
	if !ok {
		return fmt.Errorf("%w %s on collection %s", ErrUnknownIndex, aScan.Index, c.name)
	}

	for _, aKey := range aScan.Keys {
		docIdxs, err := anIndex.FindDocs(ctx, aKey)
		if err != nil {
			return err
		}
		for _, docIdx := range docIdxs {
			if err := callback(c.docs[docIdx]); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

func (c *Collection) indexRangeScan(ctx context.Context, aScan planner.Scan, reverse bool, callback func(planner.Document) error) error {
	anIndex, ok := c.indexes[aScan.Index]
	if !ok {
		return fmt.Errorf("%w %s on collection %s", ErrUnknownIndex, aScan.Index, c.name)
	}

	return anIndex.ScanRange(ctx, aScan.Range, reverse, func(_ []any, docIdx int) error {
		return callback(c.docs[docIdx])
	})
}

func applySampling(docs []planner.Document, anOperation planner.SamplingOperation) ([]planner.Document, error) {
	switch typed := anOperation.(type) {
	case planner.OrderBy:
		keys := make([]planner.SortKey, 0, len(typed.Marks))
		for _, aMark := range typed.Marks {
			keys = append(keys, planner.SortKey{Field: aMark.Row.String(), Direction: aMark.Direction})
		}
		sortDocuments(docs, keys)
		return docs, nil
	case planner.Skip:
		if typed.N >= len(docs) {
			return docs[:0], nil
		}
		if typed.N > 0 {
			return docs[typed.N:], nil
		}
		return docs, nil
	case planner.Limit:
		if typed.N >= 0 && typed.N < len(docs) {
			return docs[:typed.N], nil
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, anOperation)
	}
}
