package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardKnop/docplan/internal/indexpolicy"
	"github.com/RichardKnop/docplan/internal/planner"
	"github.com/RichardKnop/docplan/internal/querydoc"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	Schema    string
	CacheSize int
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain <query.yaml>",
		Short: "Print the plan compiled for a query",
		Long: `Compile a YAML query against a collection schema and print the plan:
the index scan, the residual filters, any sort and the sampling operations
left to the caller.`,
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

			_, result, err := compileQuery(logger, opts, args[0])
			if err != nil {
				return out.failure(err)
			}

			if rootOpts.Format == "json" {
				return out.success(newPlanOutput(result))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return err
		},
	}

	addExplainFlags(cmd, opts)

	return cmd
}

func addExplainFlags(cmd *cobra.Command, opts *ExplainOptions) {
	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "collection schema YAML file")
	cmd.Flags().IntVar(&opts.CacheSize, "cache-size", indexpolicy.DefaultCacheSize, "index selection cache size, 0 disables caching")
	_ = cmd.MarkFlagRequired("schema")
}

// compileQuery loads the schema and the query and compiles the query.
func compileQuery(logger *zap.Logger, opts *ExplainOptions, queryPath string) (querydoc.Schema, planner.Result, error) {
	schema, err := querydoc.LoadSchema(opts.Schema)
	if err != nil {
		return querydoc.Schema{}, planner.Result{}, err
	}
	aQuery, err := querydoc.LoadQuery(queryPath)
	if err != nil {
		return querydoc.Schema{}, planner.Result{}, err
	}

	aModel := schema.Model(schema.Policy(opts.CacheSize))
	ast, err := aQuery.Ast(aModel)
	if err != nil {
		return querydoc.Schema{}, planner.Result{}, err
	}

	result, err := planner.NewCompiler(planner.WithLogger(logger)).Compile(aModel, ast)
	if err != nil {
		return querydoc.Schema{}, planner.Result{}, err
	}
	return schema, result, nil
}
