package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/tsvdb"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("database", "", "")
	fs.Bool("header", true, "")
	fs.Int("sample-size", 0, "")
	fs.String("format", "", "")
	fs.String("log-level", "", "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tsvdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoad uses t.Setenv and therefore does not run in parallel.
func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, used, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.Error(t, err, "an explicit config file must exist")
		assert.Nil(t, cfg)
		assert.Empty(t, used)

		cfg, _, err = Load("", newFlagSet())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, "database: data/app.db\nsample_size: 50\nhas_header: false\nexport_format: tsv\n")
		cfg, used, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, used)
		assert.Equal(t, "data/app.db", cfg.Database)
		assert.Equal(t, 50, cfg.SampleSize)
		assert.False(t, cfg.HasHeader)
		assert.Equal(t, "tsv", cfg.ExportFormat)
		assert.Equal(t, tsvdb.DefaultBatchSize, cfg.BatchSize)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, "sample_size: 50\n")
		t.Setenv("TSVDB_SAMPLE_SIZE", "75")
		t.Setenv("TSVDB_LOG_FORMAT", "json")
		cfg, _, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 75, cfg.SampleSize)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("changed flags override env", func(t *testing.T) {
		t.Setenv("TSVDB_SAMPLE_SIZE", "75")
		t.Setenv("TSVDB_DATABASE", "env.db")
		fs := newFlagSet()
		require.NoError(t, fs.Parse([]string{"--sample-size", "10", "--header=false", "--format", "parquet"}))

		cfg, _, err := Load("", fs)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.SampleSize)
		assert.False(t, cfg.HasHeader)
		assert.Equal(t, "parquet", cfg.ExportFormat)
		assert.Equal(t, "env.db", cfg.Database, "unchanged flags do not override")
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := writeConfig(t, "batch_size: 0\n")
		_, _, err := Load(path, nil)
		assert.ErrorContains(t, err, "batch_size must be positive")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(c *Config)
		errSubstr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "comma delimiter", modify: func(c *Config) { c.Delimiter = "," }},
		{name: "tab word", modify: func(c *Config) { c.Delimiter = "tab" }},
		{name: "empty database", modify: func(c *Config) { c.Database = " " }, errSubstr: "database is required"},
		{name: "zero page size", modify: func(c *Config) { c.PageSize = 0 }, errSubstr: "page_size must be positive"},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, errSubstr: "workers must not be negative"},
		{name: "long delimiter", modify: func(c *Config) { c.Delimiter = ";;" }, errSubstr: "single character"},
		{name: "quote delimiter", modify: func(c *Config) { c.Delimiter = `"` }, errSubstr: "reserved"},
		{name: "log level", modify: func(c *Config) { c.LogLevel = "trace" }, errSubstr: "log_level"},
		{name: "log format", modify: func(c *Config) { c.LogFormat = "xml" }, errSubstr: "log_format"},
		{name: "export format", modify: func(c *Config) { c.ExportFormat = "json" }, errSubstr: "export format"},
		{name: "compression", modify: func(c *Config) { c.Compression = "lz4" }, errSubstr: "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Delimiter = `\t`
	cfg.HasHeader = false
	cfg.SampleSize = 5
	cfg.Workers = 3
	cfg.TopK = 7
	cfg.ExportFormat = "xlsx"
	cfg.Compression = "gz"
	cfg.PageSize = 20

	ic := cfg.ImportConfig()
	assert.Equal(t, '\t', ic.Delimiter)
	assert.False(t, ic.HasHeader)
	assert.Equal(t, 5, ic.SampleSize)

	ro := cfg.RankOptions()
	assert.Equal(t, 3, ro.Workers)
	assert.Equal(t, 7, ro.TopK)

	eo, err := cfg.ExportOptions()
	require.NoError(t, err)
	assert.Equal(t, tsvdb.ExportFormatXLSX, eo.Format)
	assert.Equal(t, tsvdb.CompressionGZ, eo.Compression)
	assert.Equal(t, 20, eo.PageSize)

	assert.Equal(t, rune(0), Default().DelimiterRune())
	cfg.Delimiter = ";"
	assert.Equal(t, ';', cfg.DelimiterRune())
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, Logger(ctx))

	cfg := Default()
	cfg.Database = "x.db"
	assert.Same(t, cfg, FromContext(NewContext(ctx, cfg)))
}
