// Package report exports stored ESG scores: a two-sheet Excel workbook for
// analysts (scores plus per-indicator provenance) and CSV streams for piping
// into other tools. Both renditions order rows by (Company, ReportYear) so
// repeated exports of the same data diff cleanly.
package report
