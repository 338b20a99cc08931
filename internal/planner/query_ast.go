package planner

import (
	"fmt"
	"strings"
)

// QueryAst is a single-collection query: every statement must hold, and
// the sampling operations are applied in order to the matching rows.
type QueryAst struct {
	Statements []FilterStatement
	Sampling   []SamplingOperation
}

type Direction int

const (
	Asc Direction = iota + 1
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	default:
		return "UNKNOWN"
	}
}

type OrderMark struct {
	Row               Row
	Direction         Direction
	HasSecondaryIndex bool
}

func (m OrderMark) String() string {
	return fmt.Sprintf("%s %s", m.Row, m.Direction)
}

// SamplingOperation post-processes matching rows. Only types in this
// package implement it.
type SamplingOperation interface {
	isSamplingOperation()
	fmt.Stringer
}

type OrderBy struct {
	Marks []OrderMark
}

func (OrderBy) isSamplingOperation() {}

func (o OrderBy) String() string {
	parts := make([]string, 0, len(o.Marks))
	for _, aMark := range o.Marks {
		parts = append(parts, aMark.String())
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

type Limit struct {
	N int
}

func (Limit) isSamplingOperation() {}

func (l Limit) String() string {
	return fmt.Sprintf("LIMIT %d", l.N)
}

type Skip struct {
	N int
}

func (Skip) isSamplingOperation() {}

func (s Skip) String() string {
	return fmt.Sprintf("SKIP %d", s.N)
}

// Opaque is a sampling operation this package passes through untouched.
type Opaque struct {
	Name string
	Args []any
}

func (Opaque) isSamplingOperation() {}

func (o Opaque) String() string {
	return fmt.Sprintf("%s%s", strings.ToUpper(o.Name), formatValue(o.Args))
}

// plannableOrderBy returns the position of the single OrderBy operation
// with a single mark when no row-count changing operation precedes it.
func (q QueryAst) plannableOrderBy() (int, OrderBy, bool) {
	var (
		position = -1
		found    OrderBy
	)
	for i, anOperation := range q.Sampling {
		orderBy, ok := anOperation.(OrderBy)
		if !ok {
			continue
		}
		if position >= 0 {
			// More than one OrderBy, leave them all to the emitter
			return -1, OrderBy{}, false
		}
		position, found = i, orderBy
	}
	if position < 0 || len(found.Marks) == 0 {
		return -1, OrderBy{}, false
	}
	for _, anOperation := range q.Sampling[:position] {
		switch anOperation.(type) {
		case Limit, Skip, Opaque:
			return -1, OrderBy{}, false
		}
	}
	return position, found, true
}

// withoutSampling returns a copy of the sampling list without the
// operation at the given position.
func (q QueryAst) withoutSampling(position int) []SamplingOperation {
	residual := make([]SamplingOperation, 0, len(q.Sampling))
	for i, anOperation := range q.Sampling {
		if i == position {
			continue
		}
		residual = append(residual, anOperation)
	}
	return residual
}
