package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardKnop/docplan/internal/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text" | "table"
	LogLevel string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "table"}

// NewRootCommand creates the root command for the docplan CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "docplan",
		Short: "Compile document queries into index plans",
		Long: `docplan compiles document store queries into execution plans that pick a
secondary index, derive its key bounds and leave the rest to filters.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text|table)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level, defaults to $"+logging.LevelEnv+" or warn")

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) logger() (*zap.Logger, error) {
	if o.LogLevel != "" {
		return logging.New(o.LogLevel)
	}
	return logging.FromEnv("warn")
}
