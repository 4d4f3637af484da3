package tsvdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nao1215/tsvdb/domain/model"
)

// State is the state of an import session.
type State int

const (
	// StateSampling buffers rows for schema inference
	StateSampling State = iota
	// StateCommitting creates the table and writes the sample
	StateCommitting
	// StateStreaming writes rows in batches
	StateStreaming
	// StateDraining commits a sample cut short by the end of input
	StateDraining
	// StateDone is the successful final state
	StateDone
	// StateFailed is the final state after a fatal error
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateSampling:
		return "sampling"
	case StateCommitting:
		return "committing"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImportSession describes one import invocation. Counters only grow.
type ImportSession struct {
	// ID identifies the session in logs
	ID string
	// Table is the target table name
	Table string
	// Source is the input file path
	Source string
	// HasHeader reports whether the first line was read as the header
	HasHeader bool
	// SchemaCommitted reports whether the table has been created
	SchemaCommitted bool
	// Columns is the committed schema
	Columns model.Columns
	// Total is the number of records in the source
	Total int64
	// Processed is the number of records written or skipped so far
	Processed int64
	// Skipped is the number of malformed lines
	Skipped int64
	// State is the current state
	State State
}

// ImportConfig configures an Importer.
type ImportConfig struct {
	// HasHeader treats the first line as column names
	HasHeader bool
	// Delimiter overrides the delimiter detected from the file extension
	Delimiter rune
	// SampleSize is the number of rows used for schema inference
	SampleSize int
	// BatchSize is the number of rows written per transaction
	BatchSize int
	// Progress receives (total, processed) after the schema commit and every batch
	Progress Progress
}

// DefaultImportConfig returns the default configuration: header expected,
// delimiter from the file extension, 1000-row sample and batches.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		HasHeader:  true,
		SampleSize: DefaultSampleSize,
		BatchSize:  DefaultBatchSize,
	}
}

// Importer streams delimited files into a Store.
type Importer struct {
	store  *Store
	config ImportConfig
	logger *slog.Logger
}

// NewImporter creates an Importer writing into store.
func NewImporter(store *Store, config ImportConfig) *Importer {
	config.SampleSize = NewBatchSize(config.SampleSize).Int()
	config.BatchSize = NewBatchSize(config.BatchSize).Int()
	return &Importer{
		store:  store,
		config: config,
		logger: store.Logger(),
	}
}

// Import streams the file at path into table. An empty table name is derived
// from the file name. The returned session is non-nil even on failure.
//
// Malformed lines are skipped and logged; empty lines are stored as null
// rows. Schema and transaction failures abort the import; batches committed
// before the failure remain.
func (im *Importer) Import(ctx context.Context, path, table string) (*ImportSession, error) {
	if table == "" {
		table = tableFromFilePath(path)
	}
	sess := &ImportSession{
		ID:        uuid.NewString(),
		Table:     table,
		Source:    path,
		HasHeader: im.config.HasHeader,
		State:     StateSampling,
	}
	logger := im.logger.With(slog.String("session_id", sess.ID), slog.String("table", table))

	delimiter := im.config.Delimiter
	if delimiter == 0 {
		ft := detectFileType(path)
		if ft == FileTypeUnsupported {
			sess.State = StateFailed
			return sess, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		delimiter = ft.Delimiter()
	}

	lines, err := countLines(path)
	if err != nil {
		sess.State = StateFailed
		return sess, err
	}
	sess.Total = lines
	if im.config.HasHeader && sess.Total > 0 {
		sess.Total--
	}

	in, err := openInputFile(path)
	if err != nil {
		sess.State = StateFailed
		return sess, err
	}
	defer func() { _ = in.Close() }()

	logger.Info("import started", slog.String("source", path), slog.Int64("total", sess.Total))

	err = im.store.withDB(ctx, func(db *sql.DB) error {
		r := &importRun{
			sess:    sess,
			config:  im.config,
			parser:  NewLineParser(delimiter),
			sampler: model.NewSampler(im.config.SampleSize),
			writer:  NewBatchWriter(db, logger),
			db:      db,
			logger:  logger,
		}
		return r.run(ctx, in)
	})
	if err != nil {
		sess.State = StateFailed
		logger.Error("import failed", slog.Any("error", err), slog.Int64("processed", sess.Processed))
		return sess, err
	}

	logger.Info("import finished",
		slog.Int64("processed", sess.Processed),
		slog.Int64("skipped", sess.Skipped))
	return sess, nil
}

// lineSource yields physical lines until io.EOF.
type lineSource interface {
	ReadLine() (string, error)
}

// importRun holds the mutable state of one import.
type importRun struct {
	sess    *ImportSession
	config  ImportConfig
	parser  *LineParser
	sampler *model.Sampler
	writer  *BatchWriter
	db      *sql.DB
	logger  *slog.Logger

	header  model.Header
	batch   []model.Record
	pending int64 // skipped lines not yet reported
	lineNo  int
}

func (r *importRun) run(ctx context.Context, src lineSource) error {
	headerPending := r.config.HasHeader

	for {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("import canceled",
				slog.Int64("processed", r.sess.Processed),
				slog.Int("discarded", len(r.batch)+r.sampler.Len()))
			return fmt.Errorf("%w: %w", ErrImportCanceled, err)
		}

		line, err := src.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return NewErrorContext("read", r.sess.Source).WithTable(r.sess.Table).Error(err)
		}
		r.lineNo++

		if headerPending {
			headerPending = false
			if err := r.readHeader(line); err != nil {
				return err
			}
			continue
		}

		rec, ok := r.parseLine(line)
		if !ok {
			continue
		}

		if r.sess.State == StateSampling {
			if r.sampler.Add(rec) {
				r.setState(StateCommitting)
				if err := r.commit(ctx); err != nil {
					return err
				}
				r.setState(StateStreaming)
			}
			continue
		}

		r.batch = append(r.batch, rec)
		if len(r.batch) >= r.config.BatchSize {
			if err := r.flush(ctx); err != nil {
				return err
			}
		}
	}

	if r.sess.State == StateSampling {
		r.setState(StateDraining)
		if err := r.commit(ctx); err != nil {
			return err
		}
	}
	if err := r.flush(ctx); err != nil {
		return err
	}
	if r.pending > 0 {
		r.sess.Processed += r.pending
		r.pending = 0
		r.report()
	}
	r.setState(StateDone)
	return nil
}

func (r *importRun) readHeader(line string) error {
	rec, err := r.parser.Parse(line)
	if err != nil {
		return &SchemaError{Table: r.sess.Table, Err: &ParseError{Line: r.lineNo, Err: err}}
	}
	if len(rec) == 0 {
		return &SchemaError{Table: r.sess.Table, Err: fmt.Errorf("header line: %w", ErrNoColumns)}
	}
	r.header = model.NormalizeHeader(model.NewHeader(rec))
	return nil
}

// parseLine parses one data line. Malformed lines are skipped; an empty line
// is a record with no fields and is stored as an all-null row.
func (r *importRun) parseLine(line string) (model.Record, bool) {
	rec, err := r.parser.Parse(line)
	if err != nil {
		r.skip()
		r.logger.Warn("skipping malformed line", slog.Any("error", &ParseError{Line: r.lineNo, Err: err}))
		return nil, false
	}
	return rec, true
}

func (r *importRun) skip() {
	r.sess.Skipped++
	r.pending++
}

// commit infers the schema from the sample, creates the table and writes
// the sample.
func (r *importRun) commit(ctx context.Context) error {
	rows := r.sampler.Rows()
	if r.header == nil {
		width := firstRecordWidth(rows)
		if width == 0 {
			return ErrEmptyData
		}
		r.header = model.SynthesizeHeader(width)
	}

	cols := model.InferColumns(r.header, rows)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = model.EscapeIdentifier(c.Name)
	}

	if err := CommitSchema(ctx, r.db, r.sess.Table, names, cols.Kinds()); err != nil {
		return err
	}
	r.sess.SchemaCommitted = true
	r.sess.Columns = cols
	r.logger.Info("schema committed",
		slog.Int("columns", len(cols)),
		slog.Int("sampled", len(rows)),
		slog.Int("sample_size", r.sampler.Capacity()))

	if err := r.writer.Write(ctx, r.sess.Table, rows); err != nil {
		return err
	}
	r.sess.Processed += int64(len(rows)) + r.pending
	r.pending = 0
	r.sampler.Reset()
	r.report()
	return nil
}

// firstRecordWidth returns the field count of the first record that has any
// fields.
func firstRecordWidth(rows []model.Record) int {
	for _, rec := range rows {
		if len(rec) > 0 {
			return len(rec)
		}
	}
	return 0
}

func (r *importRun) flush(ctx context.Context) error {
	if len(r.batch) == 0 {
		return nil
	}
	if err := r.writer.Write(ctx, r.sess.Table, r.batch); err != nil {
		return err
	}
	r.sess.Processed += int64(len(r.batch)) + r.pending
	r.pending = 0
	r.batch = r.batch[:0]
	r.report()
	return nil
}

func (r *importRun) report() {
	if r.config.Progress != nil {
		r.config.Progress(r.sess.Total, r.sess.Processed)
	}
}

func (r *importRun) setState(s State) {
	r.logger.Debug("import state", slog.String("from", r.sess.State.String()), slog.String("to", s.String()))
	r.sess.State = s
}
