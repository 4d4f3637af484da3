package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
)

// NewSearchCommand creates the fuzzy search command.
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <table> <field> <keyword>",
		Short: "Rank rows by similarity of a field to a keyword",
		Long: `Fetch the rows whose field contains keyword (at most candidate-limit rows),
score them by the mean of Levenshtein and Jaro-Winkler similarity and show
the top-k best matches.`,
		Example: `  tsvdb search users name alice --top-k 10`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			ranked, rs, err := store.Search(cmd.Context(), args[0], args[1], args[2], cfg.RankOptions())
			if err != nil {
				return err
			}
			renderRanked(cmd, rs, ranked)
			return nil
		},
	}
	cmd.Flags().Int("candidate-limit", tsvdb.DefaultCandidateLimit, "Rows fetched before scoring")
	cmd.Flags().Int("top-k", tsvdb.DefaultTopK, "Ranked rows shown")
	cmd.Flags().Int("workers", 0, "Scoring goroutines (0: one per CPU)")
	return cmd
}

func renderRanked(cmd *cobra.Command, rs *tsvdb.ResultSet, ranked []tsvdb.Candidate) {
	out := cmd.OutOrStdout()
	if len(ranked) == 0 {
		_, _ = fmt.Fprintln(out, "(0 rows)")
		return
	}
	header := []any{"score", "id"}
	for _, col := range rs.Columns {
		header = append(header, col.Name)
	}
	t := newTable(out, header...)
	for _, c := range ranked {
		t.AppendRow(storedRow(c.Row, []any{fmt.Sprintf("%.4f", c.Score)}))
	}
	t.Render()
	_, _ = fmt.Fprintf(out, "(%d of %d candidates)\n", len(ranked), len(rs.Rows))
}
