package tsvdb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileType represents a supported input format
type FileType int

const (
	// FileTypeTSV represents tab-separated input
	FileTypeTSV FileType = iota
	// FileTypeCSV represents comma-separated input
	FileTypeCSV
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extTXT is accepted for tab-separated text exports
	extTXT = ".txt"
	// extCSV is the CSV file extension
	extCSV = ".csv"
)

// String returns the format name
func (ft FileType) String() string {
	switch ft {
	case FileTypeTSV:
		return "tsv"
	case FileTypeCSV:
		return "csv"
	default:
		return "unsupported"
	}
}

// Delimiter returns the field delimiter for the format
func (ft FileType) Delimiter() rune {
	if ft == FileTypeCSV {
		return csvDelimiter
	}
	return tsvDelimiter
}

// detectFileType detects the input format from a path, ignoring any
// compression extension.
func detectFileType(path string) FileType {
	base := strings.ToLower(NewCompressionFactory().RemoveCompressionExtension(path))
	switch filepath.Ext(base) {
	case extTSV, extTXT:
		return FileTypeTSV
	case extCSV:
		return FileTypeCSV
	default:
		return FileTypeUnsupported
	}
}

// isSupportedFile checks if the file has a supported extension
func isSupportedFile(path string) bool {
	return detectFileType(path) != FileTypeUnsupported
}

// inputFile is an input file opened for line-by-line reading.
type inputFile struct {
	path    string
	reader  *bufio.Reader
	cleanup func() error
}

// openInputFile opens path, transparently decompressing it and dropping a
// leading byte order mark.
func openInputFile(path string) (*inputFile, error) {
	r, cleanup, err := NewCompressionFactory().CreateReaderForFile(path)
	if err != nil {
		return nil, NewErrorContext("open", path).Error(err)
	}
	return &inputFile{
		path:    path,
		reader:  bufio.NewReaderSize(stripBOM(r), 64*1024),
		cleanup: cleanup,
	}, nil
}

// stripBOM drops a UTF-8 byte order mark at the start of r.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// ReadLine returns the next physical line without its terminator.
// It returns io.EOF once no input remains.
func (f *inputFile) ReadLine() (string, error) {
	line, err := f.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close releases the file and any decompressor.
func (f *inputFile) Close() error {
	return f.cleanup()
}

// countLines counts the physical lines of the file at path, reading it
// through the same decompression as the importer.
func countLines(path string) (int64, error) {
	r, cleanup, err := NewCompressionFactory().CreateReaderForFile(path)
	if err != nil {
		return 0, NewErrorContext("count lines", path).Error(err)
	}
	defer func() { _ = cleanup() }()

	n, err := countReaderLines(stripBOM(r))
	if err != nil {
		return 0, NewErrorContext("count lines", path).Error(err)
	}
	return n, nil
}

// countReaderLines counts newline-terminated lines plus a final
// unterminated one.
func countReaderLines(r io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var (
		count int64
		last  byte = '\n'
	)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading input: %w", err)
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
