package tsvdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImportBuilder configures and runs the import of one or more files into a
// Store. Use NewImportBuilder, chain the configuration methods, call Build to
// validate the inputs and then Import.
//
//	sessions, err := tsvdb.NewImportBuilder(store).
//		AddPath("data/users.tsv").
//		WithProgress(func(total, processed int64) { ... }).
//		Build(ctx)
//	...
//	sessions, err := builder.Import(ctx)
type ImportBuilder struct {
	store *Store
	// paths contains regular file or directory paths
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// table overrides the derived table name for a single input
	table string
	// config is handed to the Importer
	config ImportConfig
	// inputs contains all files after Build validation
	inputs []importInput
	// tempFiles tracks temporary files created for cleanup
	tempFiles []string
	built     bool
}

// importInput is one file to import and its target table.
type importInput struct {
	path  string
	table string
}

// NewImportBuilder creates a builder importing into store with the default
// configuration.
func NewImportBuilder(store *Store) *ImportBuilder {
	return &ImportBuilder{
		store:  store,
		config: DefaultImportConfig(),
	}
}

// AddPath adds a file or directory. Directories are searched recursively for
// .tsv, .txt and .csv files and their .gz, .bz2, .xz and .zst variants.
func (b *ImportBuilder) AddPath(path string) *ImportBuilder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple file or directory paths.
func (b *ImportBuilder) AddPaths(paths ...string) *ImportBuilder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files of an fs.FS. The files are copied to
// temporary files during Build; call Cleanup when done.
func (b *ImportBuilder) AddFS(filesystem fs.FS) *ImportBuilder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// IntoTable sets the target table. Only valid with a single input file.
func (b *ImportBuilder) IntoTable(table string) *ImportBuilder {
	b.table = table
	return b
}

// WithHeader sets whether the first line of each file holds column names.
func (b *ImportBuilder) WithHeader(hasHeader bool) *ImportBuilder {
	b.config.HasHeader = hasHeader
	return b
}

// WithDelimiter overrides the delimiter detected from the file extension.
func (b *ImportBuilder) WithDelimiter(delimiter rune) *ImportBuilder {
	b.config.Delimiter = delimiter
	return b
}

// WithSampleSize sets the number of rows used for schema inference.
func (b *ImportBuilder) WithSampleSize(size int) *ImportBuilder {
	b.config.SampleSize = size
	return b
}

// WithBatchSize sets the number of rows written per transaction.
func (b *ImportBuilder) WithBatchSize(size int) *ImportBuilder {
	b.config.BatchSize = size
	return b
}

// WithProgress sets the progress callback.
func (b *ImportBuilder) WithProgress(progress Progress) *ImportBuilder {
	b.config.Progress = progress
	return b
}

// Build validates all configured inputs and resolves the target tables.
func (b *ImportBuilder) Build(ctx context.Context) (*ImportBuilder, error) {
	if b.store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if len(b.paths) == 0 && len(b.filesystems) == 0 {
		return nil, errors.New("at least one path must be provided")
	}
	if b.config.SampleSize < 0 || b.config.BatchSize < 0 {
		return nil, errors.New("sample and batch sizes must not be negative")
	}

	b.inputs = nil
	if len(b.paths) > 0 {
		collected, err := newFileProcessor().collectFilesFromPaths(b.paths)
		if err != nil {
			return nil, err
		}
		for _, f := range collected {
			b.inputs = append(b.inputs, importInput{path: f, table: tableFromFilePath(f)})
		}
	}

	for _, filesystem := range b.filesystems {
		if filesystem == nil {
			return nil, errors.Join(errors.New("FS cannot be nil"), b.cleanup())
		}
		inputs, err := b.processFSInput(ctx, filesystem)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to process FS input: %w", err), b.cleanup())
		}
		b.inputs = append(b.inputs, inputs...)
	}

	if b.table != "" {
		if len(b.inputs) != 1 {
			return nil, errors.Join(
				fmt.Errorf("table %q requires exactly one input file, got %d", b.table, len(b.inputs)),
				b.cleanup())
		}
		b.inputs[0].table = b.table
	}

	tables := make([]string, len(b.inputs))
	for i, in := range b.inputs {
		tables[i] = in.table
	}
	if err := newValidator().validateTableNames(tables); err != nil {
		return nil, errors.Join(err, b.cleanup())
	}

	b.built = true
	return b, nil
}

// Import imports every input in order and returns one session per file.
// It stops at the first failing file; the failed session is included.
func (b *ImportBuilder) Import(ctx context.Context) ([]*ImportSession, error) {
	if !b.built {
		return nil, errors.New("no valid input files found, did you call Build()?")
	}

	importer := NewImporter(b.store, b.config)
	sessions := make([]*ImportSession, 0, len(b.inputs))
	for _, in := range b.inputs {
		sess, err := importer.Import(ctx, in.path, in.table)
		sessions = append(sessions, sess)
		if err != nil {
			return sessions, err
		}
	}
	return sessions, nil
}

// processFSInput copies all supported files of filesystem to temporary files
func (b *ImportBuilder) processFSInput(ctx context.Context, filesystem fs.FS) ([]importInput, error) {
	var inputs []importInput

	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedFile(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		tempPath, err := b.copyFSToTemp(filesystem, path)
		if err != nil {
			return fmt.Errorf("failed to copy file %s: %w", path, err)
		}
		inputs = append(inputs, importInput{path: tempPath, table: tableFromFilePath(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}

	if len(inputs) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}
	return inputs, nil
}

// copyFSToTemp copies a file from fs.FS to a temporary file keeping its
// extensions, so format and compression detection still work.
func (b *ImportBuilder) copyFSToTemp(filesystem fs.FS, path string) (string, error) {
	file, err := filesystem.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open FS file: %w", err)
	}
	defer file.Close()

	base := filepath.Base(path)
	ext := ""
	if i := strings.Index(base, "."); i >= 0 {
		ext = base[i:]
	}

	tempFile, err := os.CreateTemp("", "tsvdb-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		removeErr := os.Remove(tempFile.Name())
		if removeErr != nil {
			return "", errors.Join(
				fmt.Errorf("failed to copy content: %w", err),
				fmt.Errorf("failed to cleanup temp file: %w", removeErr),
			)
		}
		return "", fmt.Errorf("failed to copy content: %w", err)
	}

	b.tempFiles = append(b.tempFiles, tempFile.Name())
	return tempFile.Name(), nil
}

// cleanup removes temporary files and returns any errors
func (b *ImportBuilder) cleanup() error {
	var errs []error
	for _, path := range b.tempFiles {
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove temp file %s: %w", path, err))
		}
	}
	b.tempFiles = nil
	return errors.Join(errs...)
}

// Cleanup removes the temporary files created for fs.FS inputs.
// It is safe to call multiple times.
func (b *ImportBuilder) Cleanup() error {
	return b.cleanup()
}
