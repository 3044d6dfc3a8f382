package grouper

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
)

func item(name string, qty int64) models.StockLineItem {
	return models.StockLineItem{Name: name, Quantity: decimal.NewFromInt(qty)}
}

func mapping(main string, synonyms ...string) models.SynonymMapping {
	return models.SynonymMapping{MainProduct: main, Synonyms: synonyms}
}

func TestMerge_SumsQuantitiesAndKeepsFirstName(t *testing.T) {
	items := []models.StockLineItem{
		item("A", 3),
		item("B", 2),
		item("TestProduct", 1),
	}
	mappings := []models.SynonymMapping{mapping("TestProduct", "A", "B")}

	got := Merge(items, mappings)

	if len(got) != 1 {
		t.Fatalf("expected 1 merged item, got %d", len(got))
	}
	if got[0].Name != "A" {
		t.Errorf("merged name = %q, want first member's original spelling A", got[0].Name)
	}
	if !got[0].Quantity.Equal(decimal.NewFromInt(6)) {
		t.Errorf("merged quantity = %s, want 6", got[0].Quantity)
	}
}

func TestMerge_NoMappingsPassThrough(t *testing.T) {
	items := []models.StockLineItem{item("Хлеб", 5), item("Молоко", 2)}

	got := Merge(items, nil)

	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Name != "Хлеб" || got[1].Name != "Молоко" {
		t.Errorf("pass-through order changed: %v", got)
	}
}

func TestMerge_SubstringMatching(t *testing.T) {
	items := []models.StockLineItem{
		item("Молоко Простоквашино 2.5%", 4),
		item("Молоко Домик в деревне", 3),
	}
	mappings := []models.SynonymMapping{mapping("Молоко", "Простоквашино")}

	got := Merge(items, mappings)

	if len(got) != 1 {
		t.Fatalf("expected both items merged, got %d items", len(got))
	}
	if got[0].Name != "Молоко Простоквашино 2.5%" {
		t.Errorf("merged name = %q, want first member's spelling", got[0].Name)
	}
	if !got[0].Quantity.Equal(decimal.NewFromInt(7)) {
		t.Errorf("merged quantity = %s, want 7", got[0].Quantity)
	}
}

func TestMerge_LongestPatternWins(t *testing.T) {
	// Both patterns occur in the name; the longer "сыр твердый" must be
	// tried first and claim the item for its group.
	items := []models.StockLineItem{item("Сыр твердый Российский", 2)}
	mappings := []models.SynonymMapping{
		mapping("Сыр"),
		mapping("Сыр твердый"),
	}

	got := Merge(items, mappings)

	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}

	// Add a second item hitting only the short pattern: it must land in
	// a separate group.
	items = append(items, item("Сыр плавленый", 1))
	got = Merge(items, mappings)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d items", len(got))
	}
}

func TestMerge_UngroupedFollowMerged(t *testing.T) {
	items := []models.StockLineItem{
		item("Кефир", 1),
		item("A", 3),
		item("B", 2),
	}
	mappings := []models.SynonymMapping{mapping("Main", "A", "B")}

	got := Merge(items, mappings)

	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	// Merged group comes first even though Кефир appeared earlier.
	if got[0].Name != "A" {
		t.Errorf("first item = %q, want merged group A", got[0].Name)
	}
	if got[1].Name != "Кефир" {
		t.Errorf("second item = %q, want ungrouped Кефир", got[1].Name)
	}
}

func TestMerge_CaseAndConfusablesNormalized(t *testing.T) {
	// Latin C in the item name, Cyrillic С in the pattern.
	items := []models.StockLineItem{
		item("Cок яблочный", 2),
		item("СОК ЯБЛОЧНЫЙ", 3),
	}
	mappings := []models.SynonymMapping{mapping("сок яблочный")}

	got := Merge(items, mappings)

	if len(got) != 1 {
		t.Fatalf("expected merge across case/confusable variants, got %d items", len(got))
	}
	if !got[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("merged quantity = %s, want 5", got[0].Quantity)
	}
	if got[0].Name != "Cок яблочный" {
		t.Errorf("merged name = %q, want original unnormalized first spelling", got[0].Name)
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	got := Merge(nil, []models.SynonymMapping{mapping("Main", "A")})
	if len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}
