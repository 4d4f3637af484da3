package tsvdb

import (
	"path/filepath"
	"strings"
)

// tableFromFilePath creates table name from file path
func tableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	// Then remove the file type extension
	return NewTableName(strings.TrimSuffix(fileName, filepath.Ext(fileName))).Sanitize().String()
}
