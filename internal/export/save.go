// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// Formats lists the supported on-disk export formats.
var Formats = []string{"csv", "json", "bibtex", "csl"}

// Save writes the result set to path in the given format, creating
// parent directories as needed. The file is written to a temp name and
// renamed into place so a failed write leaves no partial output behind.
func Save(rs types.ResultSet, path, format string) error {
	write, err := writerFor(format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := write(rs, tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s output: %w", format, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func writerFor(format string) (func(types.ResultSet, io.Writer) error, error) {
	switch format {
	case "csv":
		return WriteCSV, nil
	case "json":
		return WriteJSON, nil
	case "bibtex":
		return WriteBibTeX, nil
	case "csl":
		return WriteCSL, nil
	}
	return nil, fmt.Errorf("unknown export format %q (use csv, json, bibtex, or csl)", format)
}
