package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Tabular is anything that can be written as a header plus rows.
type Tabular interface {
	Headers() []string
	Records() [][]string
}

// CSVWriter writes comma-separated files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteCSV writes headers and records to filePath, replacing any existing
// file. Missing parent directories are created.
func (w *CSVWriter) WriteCSV(filePath string, headers []string, records [][]string) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := writeRecords(file, headers, records); err != nil {
		return err
	}
	return file.Close()
}

func writeRecords(out io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(out)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes t to filePath as a plain comma-separated file.
func (w *CSVWriter) WriteTable(filePath string, t Tabular) error {
	if err := w.WriteCSV(filePath, t.Headers(), t.Records()); err != nil {
		return err
	}
	w.logger.Info("CSV written",
		slog.String("file_path", filePath),
		slog.Int("columns", len(t.Headers())))
	return nil
}

// ReadCSV reads a comma-separated file back into its header and rows. A
// leading UTF-8 BOM is ignored.
func ReadCSV(filePath string) ([]string, [][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV %s: %w", filePath, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("CSV %s is empty", filePath)
	}
	return rows[0], rows[1:], nil
}
