package parsers

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// StockListConfig holds configuration for parsing stock count CSV files
type StockListConfig struct {
	NameAliases     []string `json:"name_aliases"`
	QuantityAliases []string `json:"quantity_aliases"`
	Delimiter       rune     `json:"delimiter"`
}

// DefaultStockListConfig returns a configuration matching the column
// names the stores' spreadsheets use.
func DefaultStockListConfig() *StockListConfig {
	return &StockListConfig{
		NameAliases:     []string{"Товар", "Номенклатура", "Название", "product", "name"},
		QuantityAliases: []string{"Остаток", "Количество", "stock", "quantity"},
		Delimiter:       ',',
	}
}

// StockParser parses stock count lists.
type StockParser struct {
	config *StockListConfig
	logger logger.Logger
}

// NewStockParser creates a stock list parser.
func NewStockParser(config *StockListConfig) *StockParser {
	if config == nil {
		config = DefaultStockListConfig()
	}
	return &StockParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("stock_parser"),
	}
}

// ParseStockList reads a CSV stock count. The header row must contain a
// recognizable product column; the quantity column is optional and
// malformed quantities coerce to zero rather than rejecting the row.
func (p *StockParser) ParseStockList(r io.Reader) ([]models.StockLineItem, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := NewParseStats()

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "stock list", 0, "file is empty", nil)
		}
		return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "stock list", 1, "unreadable header row", err)
	}
	stats.TotalLines++

	nameCol := findColumn(headers, p.config.NameAliases)
	if nameCol == -1 {
		return nil, stats, errors.ParseError(errors.CodeMissingColumn, "stock list", 1, p.config.NameAliases[0], nil)
	}
	qtyCol := findColumn(headers, p.config.QuantityAliases)

	var items []models.StockLineItem
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

		name := fieldAt(record, nameCol)
		if name == "" {
			stats.SkippedRows++
			continue
		}

		items = append(items, models.StockLineItem{
			Name:     name,
			Quantity: models.CoerceQuantity(fieldAt(record, qtyCol)),
		})
		stats.RecordsParsed++
	}

	p.logger.WithField("stats", stats.String()).Debug("parsed stock list")
	return items, stats, nil
}

// ParseStockText converts pasted free-text count lines into stock items.
// Each line carries a product name optionally followed by a quantity in
// its last whitespace-separated field. A line without a parseable
// quantity becomes an item with zero stock.
func ParseStockText(text string) []models.StockLineItem {
	var items []models.StockLineItem

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name := line
		qty := "0"

		if tab := strings.LastIndex(line, "\t"); tab != -1 {
			name = strings.TrimSpace(line[:tab])
			qty = strings.TrimSpace(line[tab+1:])
		} else if space := strings.LastIndexFunc(line, func(r rune) bool { return r == ' ' }); space != -1 {
			candidate := strings.TrimSpace(line[space+1:])
			if isQuantity(candidate) {
				name = strings.TrimSpace(line[:space])
				qty = candidate
			}
		}

		if name == "" {
			continue
		}
		items = append(items, models.StockLineItem{
			Name:     name,
			Quantity: models.CoerceQuantity(qty),
		})
	}

	return items
}

// isQuantity reports whether a field looks like a number, so that product
// names ending in a word are not truncated.
func isQuantity(field string) bool {
	if field == "" {
		return false
	}
	for i, r := range field {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}
