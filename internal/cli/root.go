// Package cli provides the command-line interface for tsvdb.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb/internal/cli/commands"
	"github.com/nao1215/tsvdb/internal/cli/config"
	"github.com/nao1215/tsvdb/internal/logging"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tsvdb",
		Short: "tsvdb - import delimited files into SQLite and search them",
		Long: `tsvdb streams TSV and CSV files into an SQLite database, inferring column
types from a sample of the first rows, and serves paged, filtered and
fuzzy-ranked reads and exports over the imported tables.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if used != "" {
				logger.Debug("using config file", "path", used)
			}

			ctx := config.NewContext(cmd.Context(), cfg)
			cmd.SetContext(config.WithLogger(ctx, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tsvdb.yaml)")
	rootCmd.PersistentFlags().StringP("database", "d", config.DefaultDatabase, "Path to the SQLite database")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewColumnsCommand())
	rootCmd.AddCommand(commands.NewSelectCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewInsertCommand())
	rootCmd.AddCommand(commands.NewExportCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
