package tsvdb

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RankOptions configures a fuzzy search.
type RankOptions struct {
	// CandidateLimit caps the rows fetched by the substring pre-filter
	CandidateLimit int
	// TopK caps the number of ranked rows returned
	TopK int
	// Workers is the number of scoring goroutines
	Workers int
	// Scorer scores candidates; nil uses the default Scorer
	Scorer *Scorer
}

// DefaultRankOptions returns 1000 candidates, top 100, one worker per CPU.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		CandidateLimit: DefaultCandidateLimit,
		TopK:           DefaultTopK,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

func (o RankOptions) withDefaults() RankOptions {
	d := DefaultRankOptions()
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = d.CandidateLimit
	}
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.Scorer == nil {
		o.Scorer = defaultScorer
	}
	return o
}

// Candidate is a scored row.
type Candidate struct {
	Score float64
	Row   StoredRow
}

// Search runs a fuzzy search of keyword in field of table. Rows whose field
// contains keyword are fetched (at most CandidateLimit), scored against the
// keyword and returned best first, at most TopK of them. The ResultSet holds
// the columns and the unranked candidates. Surrounding whitespace in keyword
// is ignored.
func (s *Store) Search(ctx context.Context, table, field, keyword string, opts RankOptions) ([]Candidate, *ResultSet, error) {
	opts = opts.withDefaults()
	keyword = strings.TrimSpace(keyword)

	rs, err := s.SelectTopN(ctx, table, NewContainsSearch([]string{field}, []string{keyword}), opts.CandidateLimit)
	if err != nil {
		return nil, nil, err
	}
	idx := rs.Columns.Index(field)
	if idx < 0 {
		return nil, nil, &QueryError{Table: table, Op: "search", Err: fmt.Errorf("%w: %s", ErrColumnNotFound, field)}
	}

	ranked, err := RankRows(ctx, rs.Rows, idx, keyword, opts)
	if err != nil {
		return nil, nil, &QueryError{Table: table, Op: "search", Err: err}
	}
	s.logger.Debug("fuzzy search",
		slog.String("table", table),
		slog.String("field", field),
		slog.Int("candidates", len(rs.Rows)),
		slog.Int("returned", len(ranked)))
	return ranked, rs, nil
}

// RankRows scores field of every row against keyword and returns the rows
// sorted by descending score, at most opts.TopK of them. Scoring runs on
// opts.Workers goroutines; each goroutine owns a contiguous slice of the
// output, and the sort is stable, so equal scores keep their input order.
// A null field scores as the empty string.
func RankRows(ctx context.Context, rows []StoredRow, field int, keyword string, opts RankOptions) ([]Candidate, error) {
	opts = opts.withDefaults()
	if len(rows) == 0 {
		return []Candidate{}, nil
	}

	candidates := make([]Candidate, len(rows))
	workers := min(opts.Workers, len(rows))
	chunk := (len(rows) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				target := ""
				if field >= 0 && field < len(rows[i].Values) {
					target = rows[i].Values[field].String()
				}
				candidates[i] = Candidate{Score: opts.Scorer.Score(keyword, target), Row: rows[i]}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(candidates) > opts.TopK {
		candidates = candidates[:opts.TopK]
	}
	return candidates, nil
}
