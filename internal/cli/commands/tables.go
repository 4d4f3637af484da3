package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tables, err := store.Tables(ctx)
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no tables)")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), "table", "rows")
			for _, name := range tables {
				n, err := store.Count(ctx, name, tsvdb.SearchSession{})
				if err != nil {
					return err
				}
				t.AppendRow([]any{name, n})
			}
			t.Render()
			return nil
		},
	}
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			cols, err := store.Columns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "column", "type")
			for _, c := range cols {
				t.AppendRow([]any{c.Name, c.Kind.String()})
			}
			t.Render()
			return nil
		},
	}
}
