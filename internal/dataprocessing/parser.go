package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
)

// Cell values read as a missing measurement rather than a parse failure.
var missingTokens = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"#N/A":     true,
	"#NA":      true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"NULL":     true,
	"null":     true,
	"None":     true,
	"<NA>":     true,
	"#N/A N/A": true,
	"1.#IND":   true,
	"-1.#IND":  true,
	"1.#QNAN":  true,
	"-1.#QNAN": true,
}

// ErrEmptyTable is returned for inputs without a header row.
var ErrEmptyTable = errors.New("no header row")

// ReadTable reads the table at path. Workbooks (.xlsx) are read from their
// first sheet; everything else is parsed as delimited text.
func ReadTable(path string, delimiter rune) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readWorkbook(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err).
			WithContext("file", path)
	}
	defer file.Close()

	table, err := ReadTableFromReader(file, delimiter)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err).
			WithContext("file", path)
	}
	return table, nil
}

// ReadTableFromReader parses delimited text whose first record is the
// header. Rows shorter than the header are padded with missing values; rows
// longer than the header are an error. Stray quotes inside unquoted cells
// are kept as text.
func ReadTableFromReader(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	b := newTableBuilder(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.addRow(record); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return b.table(), nil
}

func readWorkbook(path string) (*Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err).
			WithContext("file", path)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheet, path), err).
			WithContext("file", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), ErrEmptyTable).
			WithContext("file", path)
	}

	b := newTableBuilder(rows[0])
	for i, row := range rows[1:] {
		if err := b.addRow(row); err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path),
				fmt.Errorf("row %d: %w", i+2, err)).WithContext("file", path)
		}
	}

	slog.Debug("Workbook read",
		slog.String("file", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)-1))
	return b.table(), nil
}

type tableBuilder struct {
	width   int
	headers []string
	// slot maps a field position to its column; nil for ignored duplicates.
	slot []*Column
	cols map[string]*Column
	rows int
}

func newTableBuilder(header []string) *tableBuilder {
	b := &tableBuilder{
		width: len(header),
		slot:  make([]*Column, len(header)),
		cols:  make(map[string]*Column, len(header)),
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := b.cols[name]; dup {
			slog.Debug("Duplicate header ignored", slog.String("column", name), slog.Int("position", i))
			continue
		}
		c := &Column{Name: name}
		b.cols[name] = c
		b.slot[i] = c
		b.headers = append(b.headers, name)
	}
	return b
}

func (b *tableBuilder) addRow(record []string) error {
	if len(record) > b.width {
		return fmt.Errorf("expected %d fields, saw %d", b.width, len(record))
	}
	for i, c := range b.slot {
		if c == nil {
			continue
		}
		cell := ""
		if i < len(record) {
			cell = record[i]
		}
		c.Values = append(c.Values, c.parseCell(cell))
	}
	b.rows++
	return nil
}

func (c *Column) parseCell(cell string) float64 {
	s := strings.TrimSpace(cell)
	if missingTokens[s] {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if c.InvalidCells == 0 {
			c.FirstInvalid = cell
		}
		c.InvalidCells++
		return math.NaN()
	}
	return v
}

func (b *tableBuilder) table() *Table {
	return &Table{headers: b.headers, columns: b.cols, rows: b.rows}
}
