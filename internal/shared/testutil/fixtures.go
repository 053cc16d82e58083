package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MeasurementFixtures writes measurement tables into a test directory.
type MeasurementFixtures struct {
	TestDataDir string
	Delimiter   string
}

// NewMeasurementFixtures creates fixtures rooted at dir using the default
// ';' delimiter.
func NewMeasurementFixtures(dir string) *MeasurementFixtures {
	return &MeasurementFixtures{
		TestDataDir: dir,
		Delimiter:   ";",
	}
}

// Ramp returns n strictly increasing values 1..n.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

// WhiteNoise returns n normally distributed values from a seeded source.
func WhiteNoise(n int, seed int64, sigma float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// FormatColumn renders values as table cells. NaN becomes an empty cell.
func FormatColumn(values []float64) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		if v != v {
			continue
		}
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return cells
}

// WriteTable writes a delimited file with the given header and
// column-major cells. Shorter columns are padded with empty cells.
func (f *MeasurementFixtures) WriteTable(t *testing.T, name string, headers []string, columns ...[]string) string {
	t.Helper()

	rows := 0
	for _, c := range columns {
		rows = max(rows, len(c))
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, f.Delimiter))
	b.WriteString("\n")
	for r := 0; r < rows; r++ {
		cells := make([]string, len(columns))
		for c, col := range columns {
			if r < len(col) {
				cells[c] = col[r]
			}
		}
		b.WriteString(strings.Join(cells, f.Delimiter))
		b.WriteString("\n")
	}

	return f.WriteRaw(t, name, b.String())
}

// WriteRaw writes content verbatim under the fixture directory.
func (f *MeasurementFixtures) WriteRaw(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(f.TestDataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteWorkbook writes a single-sheet .xlsx with the given header and
// column-major values. NaN values are left as empty cells.
func (f *MeasurementFixtures) WriteWorkbook(t *testing.T, name string, headers []string, columns ...[]float64) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := wb.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("failed to set header: %v", err)
		}
	}
	for c, col := range columns {
		for r, v := range col {
			if v != v {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("failed to set value: %v", err)
			}
		}
	}

	path := filepath.Join(f.TestDataDir, name)
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook %s: %v", path, err)
	}
	return path
}
