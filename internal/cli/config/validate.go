package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/tsvdb"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, errors.New("database is required"))
	}

	sizes := []struct {
		key   string
		value int
	}{
		{"sample_size", c.SampleSize},
		{"batch_size", c.BatchSize},
		{"page_size", c.PageSize},
		{"candidate_limit", c.CandidateLimit},
		{"top_k", c.TopK},
	}
	for _, s := range sizes {
		if s.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", s.key, s.value))
		}
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	switch c.Delimiter {
	case "", `\t`, "tab":
	default:
		if utf8.RuneCountInString(c.Delimiter) != 1 {
			errs = append(errs, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter))
		} else if c.Delimiter == `"` || c.Delimiter == `\` || c.Delimiter == "\n" {
			errs = append(errs, fmt.Errorf("delimiter %q is reserved", c.Delimiter))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}

	if _, err := tsvdb.ParseExportFormat(c.ExportFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := tsvdb.ParseCompressionType(c.Compression); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
