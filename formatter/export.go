package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ipscope/model"
)

// SaveJSON writes the result as a pretty JSON export file. An empty
// filename picks the timestamped default. Returns the path written.
func SaveJSON(result *model.LookupResult, dir, filename string) (string, error) {
	if filename == "" {
		filename = ExportFilename("json", time.Now())
	}
	data, err := ToJSON(result)
	if err != nil {
		return "", err
	}
	return writeExport(dir, filename, []byte(data))
}

// SaveText writes the result as a formatted plain-text report file. An
// empty filename picks the timestamped default. Returns the path written.
func SaveText(result *model.LookupResult, dir, filename string) (string, error) {
	now := time.Now()
	if filename == "" {
		filename = ExportFilename("txt", now)
	}
	return writeExport(dir, filename, []byte(ReportText(result, now)))
}

func writeExport(dir, filename string, data []byte) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("could not create export directory %s: %w", dir, err)
		}
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("could not write export file %s: %w", path, err)
	}
	return path, nil
}
