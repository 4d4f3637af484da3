package tsvdb

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// validator handles validation of import inputs and export targets
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	if !info.IsDir() && !isSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return nil
}

// validateOutputDirectory validates that the output directory can be created/accessed
func (v *validator) validateOutputDirectory(outputDir string) error {
	if outputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	if info, err := os.Stat(outputDir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check output directory: %w", err)
	}

	// created on export
	return nil
}

// validateFinalState ensures at least one input file was collected
func (v *validator) validateFinalState(collectedPaths []string, originalPaths []string) error {
	if len(collectedPaths) > 0 {
		return nil
	}

	for _, path := range originalPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return errors.New("no supported files found in directory")
		}
	}
	return errors.New("no valid input files found")
}

// validateTableNames rejects two inputs that import into the same table.
// Table names compare case-insensitively.
func (v *validator) validateTableNames(tables []string) error {
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		key := strings.ToLower(t)
		if seen[key] {
			return fmt.Errorf("duplicate table name: %s", t)
		}
		seen[key] = true
	}
	return nil
}

// validatePageRange checks a 1-based inclusive page range against the
// number of pages available.
func (v *validator) validatePageRange(start, end, totalPages int) error {
	if start < 1 || end < start || end > max(totalPages, 1) {
		return fmt.Errorf("%w: pages %d-%d of %d", ErrInvalidPageRange, start, end, totalPages)
	}
	return nil
}
