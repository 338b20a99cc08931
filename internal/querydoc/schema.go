// Package querydoc loads collection schemas, queries and documents from YAML.
package querydoc

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/RichardKnop/docplan/internal/indexpolicy"
	"github.com/RichardKnop/docplan/internal/planner"
)

type Field struct {
	Name    string `yaml:"name"`
	Indexed bool   `yaml:"indexed"`
}

// Schema describes a collection, its fields and its secondary indexes.
// Indexes are colon delimited field lists, for example "last_name:age".
type Schema struct {
	Table   string   `yaml:"table"`
	Fields  []Field  `yaml:"fields"`
	Indexes []string `yaml:"indexes"`
}

// Data is a list of documents to load into a collection.
type Data struct {
	Documents []map[string]any `yaml:"documents"`
}

func LoadSchema(path string) (Schema, error) {
	var schema Schema
	if err := loadYAML(path, &schema); err != nil {
		return Schema{}, err
	}
	if err := schema.Validate(); err != nil {
		return Schema{}, errors.Wrapf(err, "invalid schema %s", path)
	}
	return schema, nil
}

func LoadData(path string) (Data, error) {
	var data Data
	if err := loadYAML(path, &data); err != nil {
		return Data{}, err
	}
	return data, nil
}

func loadYAML(path string, target any) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read from %s", path)
	}
	if err := yaml.Unmarshal(contents, target); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s", path)
	}
	return nil
}

// Validate reports every problem with the schema at once.
func (s Schema) Validate() error {
	var (
		err      error
		declared = make(map[string]struct{}, len(s.Fields))
	)
	if s.Table == "" {
		err = multierr.Append(err, fmt.Errorf("table name is required"))
	}
	for i, aField := range s.Fields {
		if aField.Name == "" {
			err = multierr.Append(err, fmt.Errorf("field %d has no name", i))
			continue
		}
		if _, ok := declared[aField.Name]; ok {
			err = multierr.Append(err, fmt.Errorf("field %s declared twice", aField.Name))
		}
		declared[aField.Name] = struct{}{}
	}
	for _, anIndexName := range s.Indexes {
		fields := planner.IndexFields(anIndexName)
		if len(fields) == 0 {
			err = multierr.Append(err, fmt.Errorf("index name is empty"))
			continue
		}
		for _, aField := range fields {
			if _, ok := declared[aField]; !ok {
				err = multierr.Append(err, fmt.Errorf("index %s references unknown field %q", anIndexName, aField))
			}
		}
	}
	return err
}

// Policy returns the index selection policy for the schema's indexes,
// memoised when cacheSize is positive.
func (s Schema) Policy(cacheSize int) planner.IndexSelector {
	indexes := make([]indexpolicy.Index, 0, len(s.Indexes))
	for _, anIndexName := range s.Indexes {
		indexes = append(indexes, indexpolicy.ParseIndex(anIndexName))
	}
	policy := indexpolicy.New(indexes...)
	if cacheSize > 0 {
		return indexpolicy.NewCached(policy, cacheSize)
	}
	return policy
}

// Model builds the planner model. A field is indexed when it is declared
// so or when it is a component of any index.
func (s Schema) Model(policy planner.IndexSelector) *planner.Model {
	inIndex := make(map[string]struct{})
	for _, anIndexName := range s.Indexes {
		for _, aField := range planner.IndexFields(anIndexName) {
			inIndex[aField] = struct{}{}
		}
	}

	fields := make([]planner.FieldDef, 0, len(s.Fields))
	for _, aField := range s.Fields {
		_, indexed := inIndex[aField.Name]
		fields = append(fields, planner.FieldDef{
			Name:              aField.Name,
			HasSecondaryIndex: aField.Indexed || indexed,
		})
	}
	return planner.NewModel(s.Table, policy, fields...)
}

func (d Data) PlannerDocuments() []planner.Document {
	docs := make([]planner.Document, 0, len(d.Documents))
	for _, aDoc := range d.Documents {
		docs = append(docs, planner.Document(aDoc))
	}
	return docs
}
