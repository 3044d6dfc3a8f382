package parsers

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// LimitsConfig holds configuration for parsing limit catalog CSV files
type LimitsConfig struct {
	NameAliases  []string `json:"name_aliases"`
	LimitAliases []string `json:"limit_aliases"`
	Delimiter    rune     `json:"delimiter"`
}

// DefaultLimitsConfig returns a configuration with the usual headers.
func DefaultLimitsConfig() *LimitsConfig {
	return &LimitsConfig{
		NameAliases:  []string{"Товар", "Номенклатура", "Название", "product", "name"},
		LimitAliases: []string{"Лимит", "Лимиты", "limit"},
		Delimiter:    ',',
	}
}

// LimitsParser parses limit catalogs.
type LimitsParser struct {
	config *LimitsConfig
	logger logger.Logger
}

// NewLimitsParser creates a limits parser.
func NewLimitsParser(config *LimitsConfig) *LimitsParser {
	if config == nil {
		config = DefaultLimitsConfig()
	}
	return &LimitsParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("limits_parser"),
	}
}

// ParseLimits reads a CSV limit catalog. Row order is preserved: it is
// the catalog's insertion order and therefore part of the matching
// contract. Rows with an unparseable limit are reported in the stats and
// skipped.
func (p *LimitsParser) ParseLimits(r io.Reader) (*models.LimitCatalog, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := NewParseStats()

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "limits", 0, "file is empty", nil)
		}
		return nil, stats, errors.ParseError(errors.CodeInvalidFormat, "limits", 1, "unreadable header row", err)
	}
	stats.TotalLines++

	nameCol := findColumn(headers, p.config.NameAliases)
	if nameCol == -1 {
		return nil, stats, errors.ParseError(errors.CodeMissingColumn, "limits", 1, p.config.NameAliases[0], nil)
	}
	limitCol := findColumn(headers, p.config.LimitAliases)
	if limitCol == -1 {
		return nil, stats, errors.ParseError(errors.CodeMissingColumn, "limits", 1, p.config.LimitAliases[0], nil)
	}

	catalog := models.NewLimitCatalog()
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

		limit, err := strconv.Atoi(fieldAt(record, limitCol))
		if err != nil {
			stats.AddError(stats.TotalLines, "invalid limit %q for %q", fieldAt(record, limitCol), name)
			continue
		}

		catalog.Set(name, limit)
		stats.RecordsParsed++
	}

	p.logger.WithField("stats", stats.String()).Debug("parsed limit catalog")
	return catalog, stats, nil
}
