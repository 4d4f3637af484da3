// Package config provides configuration management for the tsvdb CLI.
//
// Values are layered, lowest to highest priority: built-in defaults, the
// tsvdb.yaml file, TSVDB_ environment variables and explicitly set flags.
package config

import (
	"context"
	"log/slog"

	"github.com/nao1215/tsvdb"
)

// Default values.
const (
	DefaultDatabase     = "tsvdb.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultExportFormat = "csv"
	DefaultCompression  = "none"
)

// Config holds the CLI configuration.
type Config struct {
	Database       string `koanf:"database"`
	HasHeader      bool   `koanf:"has_header"`
	Delimiter      string `koanf:"delimiter"`
	SampleSize     int    `koanf:"sample_size"`
	BatchSize      int    `koanf:"batch_size"`
	PageSize       int    `koanf:"page_size"`
	CandidateLimit int    `koanf:"candidate_limit"`
	TopK           int    `koanf:"top_k"`
	// Workers is the number of scoring goroutines; 0 uses one per CPU
	Workers      int    `koanf:"workers"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`
	ExportFormat string `koanf:"export_format"`
	Compression  string `koanf:"compression"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Database:       DefaultDatabase,
		HasHeader:      true,
		SampleSize:     tsvdb.DefaultSampleSize,
		BatchSize:      tsvdb.DefaultBatchSize,
		PageSize:       tsvdb.DefaultPageSize,
		CandidateLimit: tsvdb.DefaultCandidateLimit,
		TopK:           tsvdb.DefaultTopK,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		ExportFormat:   DefaultExportFormat,
		Compression:    DefaultCompression,
	}
}

// DelimiterRune returns the configured delimiter. Zero means "detect from
// the file extension". The escape "\t" and the word "tab" select a tab.
func (c *Config) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	default:
		return []rune(c.Delimiter)[0]
	}
}

// ImportConfig converts the configuration into importer settings.
func (c *Config) ImportConfig() tsvdb.ImportConfig {
	ic := tsvdb.DefaultImportConfig()
	ic.HasHeader = c.HasHeader
	ic.Delimiter = c.DelimiterRune()
	ic.SampleSize = c.SampleSize
	ic.BatchSize = c.BatchSize
	return ic
}

// RankOptions converts the configuration into fuzzy search options.
func (c *Config) RankOptions() tsvdb.RankOptions {
	opts := tsvdb.DefaultRankOptions()
	opts.CandidateLimit = c.CandidateLimit
	opts.TopK = c.TopK
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	return opts
}

// ExportOptions converts the configuration into export options. The
// configuration must have passed Validate.
func (c *Config) ExportOptions() (tsvdb.ExportOptions, error) {
	format, err := tsvdb.ParseExportFormat(c.ExportFormat)
	if err != nil {
		return tsvdb.ExportOptions{}, err
	}
	compression, err := tsvdb.ParseCompressionType(c.Compression)
	if err != nil {
		return tsvdb.ExportOptions{}, err
	}
	return tsvdb.NewExportOptions().
		WithFormat(format).
		WithCompression(compression).
		WithPageSize(c.PageSize), nil
}

type configKey struct{}

type loggerKey struct{}

// NewContext returns a context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the configuration stored in ctx, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger retrieves the logger from ctx.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
