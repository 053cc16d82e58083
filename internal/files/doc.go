// Package files locates input files for a batch run and derives output
// artifact paths from input names.
//
// Discovery is shallow: only the entries directly inside the batch folder
// are considered, and the suffix match is case-sensitive.
//
// Example usage:
//
//	inputs, err := files.FindFilesWithSuffix("measurements", ".csv")
//	for _, in := range inputs {
//	    csvPath := files.OutputPath("output", in.Path, "_adev.csv")
//	    ...
//	}
package files
