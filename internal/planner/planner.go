// Package planner runs the order planning pipeline: it merges synonym
// groups, matches counted stock against a store's limit catalog, computes
// order quantities and applies the store's saved filters.
package planner

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/filterexpr"
	"github.com/herobront95-prog/limit-planner/internal/grouper"
	"github.com/herobront95-prog/limit-planner/internal/matcher"
	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// Request carries everything one planning run needs.
type Request struct {
	StoreID       string
	StoreName     string
	Items         []models.StockLineItem
	Catalog       *models.LimitCatalog
	Mappings      []models.SynonymMapping
	Filters       []models.Filter
	ManualRequest string
}

// Result is the outcome of a planning run.
type Result struct {
	Items []models.OrderLineItem
	Count int
	// History holds one stock observation per merged line item, ready to
	// be persisted by the caller.
	History []*models.StockHistoryEntry
}

// Service runs planning requests.
type Service struct {
	logger logger.Logger
}

// NewService creates a planning service.
func NewService() *Service {
	return &Service{
		logger: logger.GetGlobalLogger().WithComponent("planner"),
	}
}

// Plan executes the full pipeline for one store.
//
// Items with no catalog match, a non-positive matched limit, or a zero
// computed order are dropped silently. Filters are applied one after
// another with AND semantics and fail open: a row whose filter errors is
// kept. When nothing survives, the run fails with an empty_result error
// and no manual lines are appended.
func (s *Service) Plan(req Request) (*Result, error) {
	if req.Catalog == nil || req.Catalog.Len() == 0 {
		return nil, errors.EmptyResultError(req.StoreName)
	}

	merged := grouper.Merge(req.Items, req.Mappings)

	history := make([]*models.StockHistoryEntry, 0, len(merged))
	for _, item := range merged {
		history = append(history, models.NewStockHistoryEntry(req.StoreID, req.StoreName, item.Name, item.Quantity))
	}

	m := matcher.New(req.Catalog)

	rows := make([]models.OrderLineItem, 0, len(merged))
	for _, item := range merged {
		key, ok := m.BestMatch(item.Name)
		if !ok {
			s.logger.WithField("product", item.Name).Debug("no catalog match, dropping")
			continue
		}

		limit, _ := req.Catalog.Get(key)
		if limit <= 0 {
			s.logger.WithFields(logger.Fields{
				"product": item.Name,
				"key":     key,
			}).Debug("matched key has no positive limit, dropping")
			continue
		}

		order := models.OrderQuantity(limit, item.Quantity)
		if order.IsZero() {
			continue
		}

		rows = append(rows, models.OrderLineItem{
			Product: item.Name,
			Stock:   item.Quantity,
			Limit:   limit,
			Order:   order,
		})
	}

	rows = s.applyFilters(rows, req.Filters)

	if len(rows) == 0 {
		return nil, errors.EmptyResultError(req.StoreName)
	}

	rows = append(rows, manualLines(req.ManualRequest)...)

	s.logger.WithFields(logger.Fields{
		"store": req.StoreName,
		"items": len(rows),
	}).Info("planning run complete")

	return &Result{
		Items:   rows,
		Count:   len(rows),
		History: history,
	}, nil
}

// applyFilters runs every saved filter over the rows in order. A filter
// whose expression does not compile is skipped; a row whose evaluation
// errors is kept.
func (s *Service) applyFilters(rows []models.OrderLineItem, filters []models.Filter) []models.OrderLineItem {
	for _, filter := range filters {
		program, err := filterexpr.Compile(filter.Expression)
		if err != nil {
			s.logger.WithError(err).WithFields(logger.Fields{
				"filter":     filter.Name,
				"expression": filter.Expression,
			}).Warn("filter expression does not compile, skipping filter")
			continue
		}

		kept := rows[:0]
		for _, row := range rows {
			keep, err := program.Eval(filterexpr.Vars{
				Limit: decimal.NewFromInt(int64(row.Limit)),
				Stock: row.Stock,
				Order: row.Order,
			})
			if err != nil {
				s.logger.WithError(err).WithFields(logger.Fields{
					"filter":     filter.Name,
					"expression": filter.Expression,
					"product":    row.Product,
				}).Warn("filter evaluation failed, keeping row")
				keep = true
			}
			if keep {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	return rows
}

// manualLines converts the free-text manual request into order rows. Each
// non-empty line becomes a row the buyer asked for explicitly, with no
// stock or limit attached.
func manualLines(manualRequest string) []models.OrderLineItem {
	var rows []models.OrderLineItem
	for _, line := range strings.Split(manualRequest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, models.OrderLineItem{
			Product:  line,
			IsManual: true,
		})
	}
	return rows
}
