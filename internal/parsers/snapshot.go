package parsers

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// GlobalStockUpload is the parsed form of a multi-store stock snapshot
// file: the store columns in file order and, per product, the counted
// quantity in every store column.
type GlobalStockUpload struct {
	StoreColumns []string
	Data         map[string]map[string]float64
}

// ParseGlobalStock reads a snapshot CSV. The first column holds product
// names; every other header names a store column (the warehouse is just
// another column). Duplicate product rows overwrite earlier ones.
func ParseGlobalStock(r io.Reader) (*GlobalStockUpload, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := NewParseStats()

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "global stock", 0, "file is empty", nil)
		}
		return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "global stock", 1, "unreadable header row", err)
	}
	stats.TotalLines++

	if len(headers) < 2 {
		return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "global stock", 1,
			"need a product column and at least one store column", nil)
	}

	storeColumns := make([]string, 0, len(headers)-1)
	for _, header := range headers[1:] {
		header = strings.TrimSpace(header)
		if header != "" {
			storeColumns = append(storeColumns, header)
		}
	}

	upload := &GlobalStockUpload{
		StoreColumns: storeColumns,
		Data:         make(map[string]map[string]float64),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.TotalLines++
			stats.AddError(stats.TotalLines, "unreadable row: %v", err)
			continue
		}
		stats.TotalLines++

		if isEmptyRecord(record) {
			stats.SkippedRows++
			continue
		}

		product := fieldAt(record, 0)
		if product == "" {
			stats.SkippedRows++
			continue
		}

		row := make(map[string]float64, len(storeColumns))
		for i, store := range storeColumns {
			row[store] = parseQuantity(fieldAt(record, i+1))
		}
		upload.Data[product] = row
		stats.RecordsParsed++
	}

	return upload, stats, nil
}

// parseQuantity mirrors the lenient coercion used for stock counts:
// decimal commas are accepted and junk becomes zero.
func parseQuantity(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
