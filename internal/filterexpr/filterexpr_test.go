package filterexpr

import (
	"testing"

	"github.com/shopspring/decimal"
)

func vars(limit, stock, order int64) Vars {
	return Vars{
		Limit: decimal.NewFromInt(limit),
		Stock: decimal.NewFromInt(stock),
		Order: decimal.NewFromInt(order),
	}
}

func TestEvaluate_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		vars     Vars
		expected bool
	}{
		{"greater true", "order > 5", vars(1, 1, 6), true},
		{"greater false", "order > 5", vars(1, 1, 3), false},
		{"less", "stock < limit", vars(10, 4, 6), true},
		{"greater equal boundary", "order >= 6", vars(1, 1, 6), true},
		{"less equal boundary", "order <= 6", vars(1, 1, 6), true},
		{"equal", "stock == 4", vars(10, 4, 6), true},
		{"not equal", "stock != 4", vars(10, 4, 6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.vars)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		vars     Vars
		expected bool
	}{
		{"addition", "stock + order == limit", vars(10, 4, 6), true},
		{"subtraction", "limit - stock > 5", vars(10, 4, 6), true},
		{"multiplication", "order * 2 > limit", vars(10, 4, 6), true},
		{"division", "limit / 2 == 5", vars(10, 4, 6), true},
		{"precedence", "2 + 3 * 4 == 14", vars(0, 0, 0), true},
		{"parentheses", "(2 + 3) * 4 == 20", vars(0, 0, 0), true},
		{"unary minus", "-stock < 0", vars(10, 4, 6), true},
		{"fractional literal", "order > 5.5", vars(1, 1, 6), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.vars)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestEvaluate_RussianAliases(t *testing.T) {
	v := vars(10, 4, 6)

	got, err := Evaluate("Заказ > 5", v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("Заказ > 5 should be true for order=6")
	}

	got, err = Evaluate("Лимиты - Остаток == Заказ", v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("Лимиты - Остаток == Заказ should hold")
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"malformed operator", "order >> 5"},
		{"unknown variable", "price > 5"},
		{"function call shape", "max(order) > 5"},
		{"bare arithmetic", "order + 5"},
		{"bare variable", "order"},
		{"empty expression", ""},
		{"trailing garbage", "order > 5 stock"},
		{"unclosed paren", "(order > 5"},
		{"division by zero", "limit / 0 > 1"},
		{"host language injection", "__import__"},
		{"statement injection", "order > 5; drop"},
	}

	v := vars(10, 4, 6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(tt.expr, v); err == nil {
				t.Errorf("Evaluate(%q) expected an error", tt.expr)
			}
		})
	}
}

func TestCompile_Reusable(t *testing.T) {
	program, err := Compile("order > 5")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if program.Source() != "order > 5" {
		t.Errorf("Source() = %q", program.Source())
	}

	keep, err := program.Eval(vars(1, 1, 6))
	if err != nil || !keep {
		t.Errorf("Eval(order=6) = (%v, %v), want (true, nil)", keep, err)
	}
	keep, err = program.Eval(vars(1, 1, 3))
	if err != nil || keep {
		t.Errorf("Eval(order=3) = (%v, %v), want (false, nil)", keep, err)
	}
}

func TestEvaluate_DivisionByZeroVariable(t *testing.T) {
	// Divisor is zero only at evaluation time.
	if _, err := Evaluate("limit / stock > 1", vars(10, 0, 6)); err == nil {
		t.Error("expected division by zero error")
	}
}
