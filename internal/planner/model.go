package planner

import (
	"strings"
)

// IndexNameSeparator joins the component fields of a compound index name.
const IndexNameSeparator = ":"

type FieldDef struct {
	Name              string
	HasSecondaryIndex bool
}

// Model describes the collection a query runs against.
type Model struct {
	TableName   string
	Fields      map[string]FieldDef
	IndexPolicy IndexSelector
}

func NewModel(tableName string, policy IndexSelector, fields ...FieldDef) *Model {
	m := &Model{
		TableName:   tableName,
		Fields:      make(map[string]FieldDef, len(fields)),
		IndexPolicy: policy,
	}
	for _, aField := range fields {
		m.Fields[aField.Name] = aField
	}
	return m
}

// HasSecondaryIndex reports whether the named field is declared as indexed.
func (m *Model) HasSecondaryIndex(field string) bool {
	if m == nil {
		return false
	}
	aField, ok := m.Fields[field]
	return ok && aField.HasSecondaryIndex
}

// IndexSelector picks the best existing index for a set of candidate fields.
// Implementations must be deterministic and free of side effects.
type IndexSelector interface {
	Select(candidates []string, ordered bool) (Selection, error)
}

// Selection is the outcome of IndexSelector.Select. Index lists the
// component fields of the chosen index joined by IndexNameSeparator and is
// empty when no index applies. Uncovered holds candidates the index cannot
// serve.
type Selection struct {
	Index     string
	Uncovered []string
}

// Fields returns the ordered component fields of the selected index.
func (s Selection) Fields() []string {
	return IndexFields(s.Index)
}

func (s Selection) IsUncovered(field string) bool {
	for _, uncovered := range s.Uncovered {
		if uncovered == field {
			return true
		}
	}
	return false
}

// IndexName builds a compound index name from its component fields.
func IndexName(fields ...string) string {
	return strings.Join(fields, IndexNameSeparator)
}

// IndexFields splits a compound index name into its component fields.
func IndexFields(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, IndexNameSeparator)
}
