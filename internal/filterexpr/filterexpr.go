// Package filterexpr evaluates user-authored filter expressions over the
// three numeric fields of a computed order row.
//
// The grammar is deliberately tiny:
//
//	comparison := sum ( ">" | "<" | ">=" | "<=" | "==" | "!=" ) sum
//	sum        := term { ("+" | "-") term }
//	term       := factor { ("*" | "/") factor }
//	factor     := NUMBER | VARIABLE | "(" sum ")" | "-" factor
//
// The only identifiers are the three variables limit, stock and order
// (Russian aliases Лимиты, Остаток, Заказ are accepted for filters saved
// by the old spreadsheets). There are no function calls, no attribute
// access, and no way to reach anything outside the three bound values, so
// a hostile expression can at worst fail to evaluate.
//
// Callers decide the failure policy. The planner fails open: a row whose
// filter errors is kept, never dropped.
package filterexpr

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Vars binds the three fields an expression may reference.
type Vars struct {
	Limit decimal.Decimal
	Stock decimal.Decimal
	Order decimal.Decimal
}

type field int

const (
	fieldLimit field = iota
	fieldStock
	fieldOrder
)

// Program is a compiled filter expression, reusable across rows.
type Program struct {
	source string
	root   node
}

// Compile parses an expression into a reusable program. The expression
// must be a single comparison between two arithmetic terms.
func Compile(expression string) (*Program, error) {
	tokens, err := lex(expression)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	root, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}

	return &Program{source: expression, root: root}, nil
}

// Eval evaluates the compiled expression against one row's values.
func (p *Program) Eval(vars Vars) (bool, error) {
	return p.root.evalBool(vars)
}

// Source returns the original expression text.
func (p *Program) Source() string {
	return p.source
}

// Evaluate compiles and evaluates an expression in one step.
func Evaluate(expression string, vars Vars) (bool, error) {
	program, err := Compile(expression)
	if err != nil {
		return false, err
	}
	return program.Eval(vars)
}
