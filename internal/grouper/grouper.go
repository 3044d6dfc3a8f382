// Package grouper merges stock line items that denote the same product
// under configured synonym mappings, summing their quantities.
package grouper

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/internal/textnorm"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// pattern is one normalized spelling belonging to a synonym group.
type pattern struct {
	text  string
	group int
}

// mergedGroup accumulates the members of one synonym group in input order.
type mergedGroup struct {
	// name is the original, unnormalized spelling of the first member;
	// it is the spelling that stays matchable against the catalog.
	name  string
	total decimal.Decimal
	count int
}

// Merge collapses line items that fall into the same synonym group into a
// single item whose quantity is the sum of the members. Patterns are tried
// longest-first, and a pattern hits when it occurs as a substring of the
// item's normalized name. Items matching no pattern pass through unchanged.
//
// Output ordering: merged groups first, in the order each group first
// appeared in the input, then ungrouped items in input order. Interleaving
// between grouped and ungrouped items is not preserved.
func Merge(items []models.StockLineItem, mappings []models.SynonymMapping) []models.StockLineItem {
	if len(items) == 0 || len(mappings) == 0 {
		return items
	}

	patterns := buildPatterns(mappings)
	if len(patterns) == 0 {
		return items
	}

	log := logger.GetGlobalLogger().WithComponent("grouper")

	groups := make(map[int]*mergedGroup)
	var groupOrder []int
	var ungrouped []models.StockLineItem

	for _, item := range items {
		gid, ok := findGroup(patterns, item.Name)
		if !ok {
			ungrouped = append(ungrouped, item)
			continue
		}

		g, seen := groups[gid]
		if !seen {
			g = &mergedGroup{name: item.Name, total: decimal.Zero}
			groups[gid] = g
			groupOrder = append(groupOrder, gid)
		}
		g.total = g.total.Add(item.Quantity)
		g.count++
	}

	merged := make([]models.StockLineItem, 0, len(groupOrder)+len(ungrouped))
	for _, gid := range groupOrder {
		g := groups[gid]
		if g.count > 1 {
			log.WithFields(logger.Fields{
				"product":     g.name,
				"members":     g.count,
				"total_stock": g.total.String(),
			}).Info("Merged synonym group")
		}
		merged = append(merged, models.StockLineItem{Name: g.name, Quantity: g.total})
	}

	return append(merged, ungrouped...)
}

// buildPatterns flattens the mappings into (normalized text, group) pairs
// and sorts them by descending length so the most specific spelling is
// tried first. The sort is stable: equal lengths keep mapping order.
func buildPatterns(mappings []models.SynonymMapping) []pattern {
	var patterns []pattern
	for i, m := range mappings {
		if text := normalizePattern(m.MainProduct); text != "" {
			patterns = append(patterns, pattern{text: text, group: i})
		}
		for _, syn := range m.Synonyms {
			if text := normalizePattern(syn); text != "" {
				patterns = append(patterns, pattern{text: text, group: i})
			}
		}
	}

	sort.SliceStable(patterns, func(a, b int) bool {
		return utf8.RuneCountInString(patterns[a].text) > utf8.RuneCountInString(patterns[b].text)
	})
	return patterns
}

// findGroup returns the group of the first pattern occurring as a
// substring of the item's normalized name.
func findGroup(patterns []pattern, name string) (int, bool) {
	normalized := normalizePattern(name)
	for _, p := range patterns {
		if strings.Contains(normalized, p.text) {
			return p.group, true
		}
	}
	return 0, false
}

func normalizePattern(text string) string {
	return strings.TrimSpace(strings.ToLower(textnorm.Normalize(text)))
}
