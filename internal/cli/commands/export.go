package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <table> <path> | export --all <dir>",
		Short: "Export a table to CSV, TSV, XLSX or Parquet",
		Example: `  # All pages as CSV
  tsvdb export users users.csv

  # Pages 2 to 4 as gzip-compressed TSV
  tsvdb export users users.tsv.gz --format tsv --compression gz --pages 2-4

  # The current page of a filtered view
  tsvdb export users page.xlsx --format xlsx --page 3 -w name=ali

  # Every table into a directory
  tsvdb export --all out/ --format parquet`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all, _ := cmd.Flags().GetBool("all"); all {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: runExport,
	}
	cmd.Flags().String("format", "csv", "Output format (csv|tsv|xlsx|parquet)")
	cmd.Flags().String("compression", "none", "Output compression for csv and tsv (none|gz|xz|zstd)")
	cmd.Flags().Int("page-size", tsvdb.DefaultPageSize, "Rows per page")
	cmd.Flags().Int("page", 0, "Export a single page")
	cmd.Flags().String("pages", "", "Export a page range (start-end)")
	cmd.Flags().Bool("all", false, "Export every table into the directory given as argument")
	cmd.MarkFlagsMutuallyExclusive("page", "pages")
	cmd.MarkFlagsMutuallyExclusive("all", "where")
	addWhereFlag(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.ExportOptions()
	if err != nil {
		return err
	}
	scope, err := exportScope(cmd)
	if err != nil {
		return err
	}
	session, err := searchSession(cmd)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	opts = opts.WithScope(scope).WithSession(session).WithProgress(func(done, total int) {
		_, _ = fmt.Fprintf(errOut, "\rexported page %d/%d", done, total)
	})

	ctx := cmd.Context()
	if all, _ := cmd.Flags().GetBool("all"); all {
		paths, err := store.ExportTables(ctx, args[0], opts)
		_, _ = fmt.Fprintln(errOut)
		if err != nil {
			return err
		}
		for _, p := range paths {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	err = store.Export(ctx, args[0], args[1], opts)
	_, _ = fmt.Fprintln(errOut)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%s) to %s\n", args[0], scope, args[1])
	return nil
}

func exportScope(cmd *cobra.Command) (tsvdb.ExportScope, error) {
	page, _ := cmd.Flags().GetInt("page")
	pages, _ := cmd.Flags().GetString("pages")
	switch {
	case page != 0:
		return tsvdb.CurrentPage(page), nil
	case pages != "":
		return parsePageRange(pages)
	default:
		return tsvdb.AllPages(), nil
	}
}

// parsePageRange parses "start-end". Bounds are checked by the export.
func parsePageRange(s string) (tsvdb.ExportScope, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return tsvdb.ExportScope{}, fmt.Errorf("invalid page range %q, want start-end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return tsvdb.ExportScope{}, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return tsvdb.ExportScope{}, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	return tsvdb.PageRange(start, end), nil
}
