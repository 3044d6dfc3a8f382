// Package parsers reads and writes the CSV files the planner exchanges
// with its users: stock count lists, limit catalogs, multi-store stock
// snapshots and the resulting order files.
//
// The files come from spreadsheets exported by different people, so
// column headers are matched case-insensitively against a list of known
// aliases and quantity cells tolerate decimal commas and junk values.
package parsers

import (
	"fmt"
	"strings"
)

// RowError records one rejected input row.
type RowError struct {
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	TotalLines    int
	RecordsParsed int
	SkippedRows   int
	Errors        []*RowError
}

// NewParseStats creates a new ParseStats instance
func NewParseStats() *ParseStats {
	return &ParseStats{
		Errors: make([]*RowError, 0),
	}
}

// AddError records an error for one row
func (ps *ParseStats) AddError(line int, format string, args ...interface{}) {
	ps.Errors = append(ps.Errors, &RowError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// HasErrors returns true if there were any parsing errors
func (ps *ParseStats) HasErrors() bool {
	return len(ps.Errors) > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records, %d skipped, %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.SkippedRows, len(ps.Errors))
}

// findColumn resolves a header index by alias, case-insensitively.
// Returns -1 when none of the aliases is present.
func findColumn(headers []string, aliases []string) int {
	for i, header := range headers {
		header = strings.ToLower(strings.TrimSpace(header))
		for _, alias := range aliases {
			if header == strings.ToLower(alias) {
				return i
			}
		}
	}
	return -1
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func fieldAt(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
