package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
	"github.com/alejandrokeller/allan-plot/internal/shared/testutil"
)

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "valid directory with files",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "test.csv"), []byte("a\n1\n"), 0644))
				return dir
			},
		},
		{
			name: "valid empty directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "non-existent directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "path is file not directory",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "test.txt")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)
			err := validator.ValidateInputDirectory(tt.setupFunc(t))

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_EnsureOutputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "nested directories are created",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "new", "nested", "dir")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(nil)
			dir := tt.setupFunc(t)

			require.NoError(t, validator.EnsureOutputDirectory(dir))
			// idempotent
			require.NoError(t, validator.EnsureOutputDirectory(dir))

			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestFileValidator_EnsureOutputDirectory_BlockedByFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewFileValidator(nil).EnsureOutputDirectory(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0644))
		return path
	}

	tests := []struct {
		name     string
		path     string
		wantType apperrors.ErrorType
	}{
		{name: "csv file", path: write("clock.csv")},
		{name: "excel workbook", path: write("scope.xlsx")},
		{name: "upper case extension", path: write("CLOCK.CSV")},
		{name: "any extension", path: write("scope.dat")},
		{name: "temporary excel file", path: write("~$scope.xlsx"), wantType: apperrors.ErrTypeValidation},
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), wantType: apperrors.ErrTypeNotFound},
		{name: "directory", path: dir, wantType: apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileValidator(nil).ValidateInputFile(tt.path)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestFileValidator_LogsFailures(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	validator := NewFileValidator(logger)

	_ = validator.ValidateFile(filepath.Join(t.TempDir(), "missing.csv"))

	testutil.AssertLogContains(t, handler, slog.LevelError, "File does not exist")
}
