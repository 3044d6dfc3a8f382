package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLimitCatalog_InsertionOrder(t *testing.T) {
	c := NewLimitCatalog()
	c.Set("Хлеб", 30)
	c.Set("Молоко", 10)
	c.Set("Сыр 250", 5)

	want := []string{"Хлеб", "Молоко", "Сыр 250"}
	got := c.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i, key := range want {
		if got[i] != key {
			t.Errorf("key[%d] = %q, want %q", i, got[i], key)
		}
	}
}

func TestLimitCatalog_UpdateKeepsPosition(t *testing.T) {
	c := NewLimitCatalog()
	c.Set("Хлеб", 30)
	c.Set("Молоко", 10)
	c.Set("Хлеб", 40)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries after update, got %d", c.Len())
	}
	if c.Keys()[0] != "Хлеб" {
		t.Errorf("updated key moved: first key is %q", c.Keys()[0])
	}
	if limit, _ := c.Get("Хлеб"); limit != 40 {
		t.Errorf("expected updated limit 40, got %d", limit)
	}
}

func TestLimitCatalog_NegativeClampedToZero(t *testing.T) {
	c := NewLimitCatalog()
	c.Set("Хлеб", -5)

	limit, ok := c.Get("Хлеб")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if limit != 0 {
		t.Errorf("expected negative limit clamped to 0, got %d", limit)
	}
}

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"integer", "25", "25"},
		{"decimal point", "2.5", "2.5"},
		{"decimal comma", "2,5", "2.5"},
		{"padded", "  7 ", "7"},
		{"non-numeric becomes zero", "много", "0"},
		{"empty becomes zero", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, _ := decimal.NewFromString(tt.expected)
			if got := CoerceQuantity(tt.input); !got.Equal(want) {
				t.Errorf("CoerceQuantity(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestOrderQuantity(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		stock    string
		expected string
	}{
		{"stock below limit", 10, "4", "6"},
		{"stock above limit", 10, "12", "0"},
		{"stock equals limit", 10, "10", "0"},
		{"fractional stock", 10, "4.5", "5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, _ := decimal.NewFromString(tt.stock)
			want, _ := decimal.NewFromString(tt.expected)
			if got := OrderQuantity(tt.limit, stock); !got.Equal(want) {
				t.Errorf("OrderQuantity(%d, %s) = %s, want %s", tt.limit, stock, got, want)
			}
		})
	}
}

func TestLimitItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    LimitItem
		wantErr bool
	}{
		{"valid", LimitItem{Product: "Хлеб", Limit: 30}, false},
		{"zero limit allowed", LimitItem{Product: "Хлеб", Limit: 0}, false},
		{"empty product", LimitItem{Product: "  ", Limit: 10}, true},
		{"negative limit", LimitItem{Product: "Хлеб", Limit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	store := NewStore("Центральный")

	if store.ID == "" {
		t.Error("expected store ID to be generated")
	}
	if store.Name != "Центральный" {
		t.Errorf("expected name to be set, got %q", store.Name)
	}
	if store.Limits == nil || len(store.Limits) != 0 {
		t.Error("expected empty limits slice")
	}
}

func TestStore_Catalog(t *testing.T) {
	store := NewStore("Центральный")
	store.Limits = []LimitItem{
		{Product: "Хлеб", Limit: 30},
		{Product: "Молоко", Limit: 10},
	}

	c := store.Catalog()
	if c.Len() != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", c.Len())
	}
	if limit, _ := c.Get("Молоко"); limit != 10 {
		t.Errorf("expected limit 10 for Молоко, got %d", limit)
	}
}
