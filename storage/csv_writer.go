package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"apkmirror/models"
	"apkmirror/utils"
)

var appColumns = []string{
	"title", "package_name", "slug", "rating",
	"review_count_raw", "review_count_formatted", "review_count_numeric",
	"developer", "icon_url", "internal_link",
}

// CSVWriter writes app listings as CSV or TSV to a file or stream
type CSVWriter struct {
	filePath string
	out      io.Writer
	comma    rune
	logger   *utils.Logger
}

// NewCSVWriter writes to filePath, creating its directory
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, comma: ',', logger: logger}
}

// NewStreamWriter writes to w; tab selects TSV output
func NewStreamWriter(w io.Writer, tab bool, logger *utils.Logger) *CSVWriter {
	c := &CSVWriter{out: w, comma: ',', logger: logger}
	if tab {
		c.comma = '\t'
	}
	return c
}

// WriteApps writes a header and one row per app
func (w *CSVWriter) WriteApps(apps []models.AppSummary) error {
	out := w.out
	if out == nil {
		if err := os.MkdirAll(filepath.Dir(w.filePath), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(w.filePath)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()
		out = file
	}

	writer := csv.NewWriter(out)
	writer.Comma = w.comma

	if err := writer.Write(appColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, a := range apps {
		row := []string{
			a.Title,
			a.PackageName,
			a.Slug,
			a.Rating,
			a.ReviewCountRaw,
			a.ReviewCountFormatted,
			strconv.FormatFloat(a.ReviewCountNumeric, 'f', -1, 64),
			a.Developer,
			a.IconURL,
			a.InternalLink,
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for '%s': %v", a.Title, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if w.filePath != "" {
		w.logger.Info("Listings written to: %s (%d rows)", w.filePath, len(apps))
	}
	return nil
}
