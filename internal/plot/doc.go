// Package plot turns deviation results into a log-log figure and renders it.
//
// Building the figure is pure: NewFigure only computes lines, error bands and
// axis bounds. Render owns the canvas and the output file for the duration
// of one call.
package plot
