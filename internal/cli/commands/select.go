package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
	"github.com/nao1215/tsvdb/domain/model"
)

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Show a page of rows",
		Example: `  # First page
  tsvdb select users

  # Third page of users whose name contains "ali" and city contains "os"
  tsvdb select users --page 3 -w name=ali -w city=os

  # First 10 matching rows
  tsvdb select users --top 10 -w name=ali`,
		Args: cobra.ExactArgs(1),
		RunE: runSelect,
	}
	cmd.Flags().IntP("page", "p", 1, "Page number, starting at 1")
	cmd.Flags().Int("page-size", tsvdb.DefaultPageSize, "Rows per page")
	cmd.Flags().Int("top", 0, "Return the first N matching rows instead of a page")
	addWhereFlag(cmd)
	return cmd
}

func runSelect(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	session, err := searchSession(cmd)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")
	top, _ := cmd.Flags().GetInt("top")

	ctx := cmd.Context()
	table := args[0]
	if top > 0 {
		rs, err := store.SelectTopN(ctx, table, session, top)
		if err != nil {
			return err
		}
		renderRows(cmd.OutOrStdout(), rs)
		return nil
	}

	if page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", page)
	}
	total, err := store.Count(ctx, table, session)
	if err != nil {
		return err
	}
	rs, err := store.Select(ctx, table, session, page, cfg.PageSize)
	if err != nil {
		return err
	}
	renderRows(cmd.OutOrStdout(), rs)
	pages := (total + int64(cfg.PageSize) - 1) / int64(cfg.PageSize)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d matching rows\n", page, max(pages, 1), total)
	return nil
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <value>...",
		Short: "Insert one row",
		Long: `Insert one row. Values are given in column order and converted to the
column types; values that do not convert are stored as NULL.`,
		Example: `  tsvdb insert users carol 41 true`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.InsertRow(cmd.Context(), args[0], model.NewRecord(args[1:])); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted 1 row into %s\n", args[0])
			return nil
		},
	}
}
