// Package dataprocessing reads measurement tables and turns requested
// columns into Allan deviation results.
//
// The flow for one input file is:
//
//  1. ReadTable parses delimited text (or the first sheet of an .xlsx
//     workbook) into named float columns, with NaN for missing cells.
//  2. ColumnProcessor checks each requested column, drops missing values and
//     runs the estimator. Columns that are absent, unparseable, too short or
//     rejected by the estimator are skipped with a warning.
//  3. Results are merged into a CombinedTable keyed on the tau sequence of
//     the first successful column.
//  4. FileProcessor writes <base>_adev.csv and <base>_plot.png to the
//     output directory, or nothing when no column produced a result.
//
// User-facing progress and warning lines go to the console writer given to
// the processors; structured logs go through slog.
package dataprocessing
