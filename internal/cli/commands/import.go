package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
)

// progressTick is one progress report handed from the import goroutine to
// the command.
type progressTick struct {
	total     int64
	processed int64
}

type importResult struct {
	sessions []*tsvdb.ImportSession
	err      error
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import delimited files into the database",
		Long: `Import TSV, CSV and text files into the database. Directories are searched
recursively; compressed files (.gz, .bz2, .xz, .zst) are decompressed on the fly.

Column types are inferred from the first sample-size rows. Rows are then
written in batches of batch-size rows, each in its own transaction.`,
		Example: `  # Import one file, table name derived from the file name
  tsvdb import users.tsv

  # Import a file without header into a named table
  tsvdb import --header=false --table people raw.txt

  # Import every supported file of a directory
  tsvdb import ./data`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("table", "t", "", "Target table (single input only)")
	cmd.Flags().Bool("header", true, "First line holds column names")
	cmd.Flags().String("delimiter", "", `Field delimiter (default: "," for .csv, tab otherwise)`)
	cmd.Flags().Int("sample-size", tsvdb.DefaultSampleSize, "Rows sampled for type inference")
	cmd.Flags().Int("batch-size", tsvdb.DefaultBatchSize, "Rows written per transaction")
	cmd.Flags().Bool("quiet", false, "Do not print progress")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	table, _ := cmd.Flags().GetString("table")
	quiet, _ := cmd.Flags().GetBool("quiet")

	ic := cfg.ImportConfig()
	ticks := make(chan progressTick, 16)
	builder := tsvdb.NewImportBuilder(store).
		AddPaths(args...).
		IntoTable(table).
		WithHeader(ic.HasHeader).
		WithDelimiter(ic.Delimiter).
		WithSampleSize(ic.SampleSize).
		WithBatchSize(ic.BatchSize).
		WithProgress(func(total, processed int64) {
			ticks <- progressTick{total: total, processed: processed}
		})

	ctx := cmd.Context()
	if _, err := builder.Build(ctx); err != nil {
		return err
	}

	done := make(chan importResult, 1)
	go func() {
		sessions, err := builder.Import(ctx)
		close(ticks)
		done <- importResult{sessions: sessions, err: err}
	}()

	errOut := cmd.ErrOrStderr()
	for tick := range ticks {
		if !quiet {
			_, _ = fmt.Fprintf(errOut, "\rimported %d/%d rows", tick.processed, tick.total)
		}
	}
	res := <-done
	if !quiet {
		_, _ = fmt.Fprintln(errOut)
	}

	renderSessions(cmd, res.sessions)
	if res.err != nil {
		if errors.Is(res.err, tsvdb.ErrImportCanceled) {
			return fmt.Errorf("import canceled, committed batches were kept: %w", res.err)
		}
		return res.err
	}
	return nil
}

func renderSessions(cmd *cobra.Command, sessions []*tsvdb.ImportSession) {
	if len(sessions) == 0 {
		return
	}
	t := newTable(cmd.OutOrStdout(), "table", "source", "columns", "rows", "skipped", "state")
	for _, s := range sessions {
		t.AppendRow([]any{s.Table, s.Source, len(s.Columns), s.Processed - s.Skipped, s.Skipped, s.State.String()})
	}
	t.Render()
}
