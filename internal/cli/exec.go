package cli

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardKnop/docplan/internal/memstore"
	"github.com/RichardKnop/docplan/internal/pkg/util"
	"github.com/RichardKnop/docplan/internal/planner"
	"github.com/RichardKnop/docplan/internal/querydoc"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	ExplainOptions
	Data string
}

// ExecOutput is the JSON rendering of an executed query.
type ExecOutput struct {
	Plan      PlanOutput         `json:"plan"`
	Documents []planner.Document `json:"documents"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec <query.yaml>",
		Short: "Run a query against documents loaded into memory",
		Long: `Compile a YAML query, load the documents from --data into an in-memory
collection indexed per the schema and print the matching documents, one
JSON object per line or, with --format=table, as a table with a column per
top level field.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter{format: rootOpts.Format, w: cmd.OutOrStdout()}

			logger, err := rootOpts.logger()
			if err != nil {
				return out.failure(err)
			}
			defer logger.Sync() // flushes buffer, if any

			docs, result, err := execQuery(cmd.Context(), logger, opts, args[0])
			if err != nil {
				return out.failure(err)
			}

			if rootOpts.Format == "json" {
				return out.success(ExecOutput{
					Plan:      newPlanOutput(result),
					Documents: docs,
				})
			}

			if rootOpts.Format == "table" {
				columns, rows := documentTable(docs)
				util.PrintTable(cmd.OutOrStdout(), columns, rows)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, aDoc := range docs {
				if err := enc.Encode(aDoc); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addExplainFlags(cmd, &opts.ExplainOptions)
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "documents YAML file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func execQuery(ctx context.Context, logger *zap.Logger, opts *ExecOptions, queryPath string) ([]planner.Document, planner.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	schema, result, err := compileQuery(logger, &opts.ExplainOptions, queryPath)
	if err != nil {
		return nil, planner.Result{}, err
	}

	data, err := querydoc.LoadData(opts.Data)
	if err != nil {
		return nil, planner.Result{}, err
	}

	aCollection := memstore.New(schema.Table, schema.Indexes, memstore.WithLogger(logger))
	aCollection.Insert(data.PlannerDocuments()...)

	docs, err := aCollection.Execute(ctx, result)
	if err != nil {
		return nil, planner.Result{}, err
	}
	return docs, result, nil
}

// documentTable lays documents out with one sorted column per top level
// field found in any of them.
func documentTable(docs []planner.Document) ([]string, [][]any) {
	seen := make(map[string]struct{})
	columns := make([]string, 0, 8)
	for _, aDoc := range docs {
		for aField := range aDoc {
			if _, ok := seen[aField]; !ok {
				seen[aField] = struct{}{}
				columns = append(columns, aField)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]any, 0, len(docs))
	for _, aDoc := range docs {
		aRow := make([]any, 0, len(columns))
		for _, aColumn := range columns {
			aRow = append(aRow, aDoc[aColumn])
		}
		rows = append(rows, aRow)
	}
	return columns, rows
}
