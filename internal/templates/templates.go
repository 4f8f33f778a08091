// Package templates writes the bundled project-document formats to disk,
// either as a markdown file or packed into a zip archive.
package templates

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aliadodoc/internal/data/embedded"
)

// DefaultFileName is the name used when no output path is given.
const DefaultFileName = "essential-formats.md"

// Formats returns the bundled formats document.
func Formats() []byte {
	return embedded.FormatsTemplateData
}

// WriteMarkdown writes the formats document to w.
func WriteMarkdown(w io.Writer) error {
	_, err := w.Write(embedded.FormatsTemplateData)
	return err
}

// WriteZip writes a zip archive holding the formats document to w.
func WriteZip(w io.Writer, modified time.Time) error {
	zw := zip.NewWriter(w)

	header := &zip.FileHeader{
		Name:     DefaultFileName,
		Method:   zip.Deflate,
		Modified: modified,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if err := WriteMarkdown(entry); err != nil {
		return fmt.Errorf("failed to write archive entry: %w", err)
	}

	return zw.Close()
}

// Save writes the formats document to path and returns the path written.
// An empty path uses DefaultFileName, with a .zip suffix when zipped.
// A path ending in .zip always produces an archive.
func Save(path string, zipped bool) (string, error) {
	if path == "" {
		path = DefaultFileName
		if zipped {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".zip"
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		zipped = true
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if zipped {
		err = WriteZip(f, time.Now())
	} else {
		err = WriteMarkdown(f)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
