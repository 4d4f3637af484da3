package tsvdb

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// fileProcessor expands import paths into the list of files to import
type fileProcessor struct {
	validator *validator
}

// newFileProcessor creates a new file processor instance
func newFileProcessor() *fileProcessor {
	return &fileProcessor{
		validator: newValidator(),
	}
}

// collectFilesFromPaths validates and collects all files from the given paths.
// Directories are walked recursively. When both a compressed and an
// uncompressed file map to the same table, the uncompressed one wins.
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		if err := fp.validator.validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
		} else {
			if err := fp.addSingleFile(path, processedFiles, &collectedPaths); err != nil {
				return nil, err
			}
		}
	}

	collectedPaths = fp.deduplicateCompressedFiles(collectedPaths)
	if err := fp.validator.validateFinalState(collectedPaths, paths); err != nil {
		return nil, err
	}
	return collectedPaths, nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var collectedPaths []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isSupportedFile(filePath) {
			return nil
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}

		if !processedFiles[absPath] {
			processedFiles[absPath] = true
			collectedPaths = append(collectedPaths, filePath)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return collectedPaths, nil
}

// addSingleFile validates and adds a single file to the collected paths
func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	if !isSupportedFile(filePath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !processedFiles[absPath] {
		processedFiles[absPath] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}

	return nil
}

// deduplicateCompressedFiles removes compressed files when their uncompressed
// versions exist. Input order is kept.
func (fp *fileProcessor) deduplicateCompressedFiles(files []string) []string {
	uncompressed := make(map[string]bool)
	for _, file := range files {
		if !fp.isCompressedFile(file) {
			uncompressed[fp.tableKey(file)] = true
		}
	}

	seenCompressed := make(map[string]bool)
	result := make([]string, 0, len(files))
	for _, file := range files {
		if fp.isCompressedFile(file) {
			key := fp.tableKey(file)
			if uncompressed[key] || seenCompressed[key] {
				continue
			}
			seenCompressed[key] = true
		}
		result = append(result, file)
	}
	return slices.Clip(result)
}

// tableKey identifies a file by directory and table name.
func (fp *fileProcessor) tableKey(file string) string {
	return filepath.Join(filepath.Dir(file), tableFromFilePath(file))
}

// isCompressedFile checks if a file path represents a compressed file
func (fp *fileProcessor) isCompressedFile(filePath string) bool {
	p := strings.ToLower(filePath)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
