// Package exporter writes result tables as comma-separated files and reads
// them back.
//
// Floats are written in the shortest representation that round-trips
// through strconv.ParseFloat, so a written table read back with ReadCSV and
// ParseFloat reproduces the original values exactly. Missing values are
// written as empty cells.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(logger)
//	err := writer.WriteTable("output/clock_adev.csv", combined)
package exporter
