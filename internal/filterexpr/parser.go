package filterexpr

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// node is an AST node. Arithmetic nodes evaluate to decimals; the single
// comparison node at the root evaluates to a boolean.
type node interface {
	eval(vars Vars) (decimal.Decimal, error)
	evalBool(vars Vars) (bool, error)
}

type numberNode struct {
	value decimal.Decimal
}

func (n numberNode) eval(Vars) (decimal.Decimal, error) {
	return n.value, nil
}

func (n numberNode) evalBool(Vars) (bool, error) {
	return false, fmt.Errorf("expression must be a comparison, got a bare number")
}

type varNode struct {
	field field
}

func (n varNode) eval(vars Vars) (decimal.Decimal, error) {
	switch n.field {
	case fieldLimit:
		return vars.Limit, nil
	case fieldStock:
		return vars.Stock, nil
	default:
		return vars.Order, nil
	}
}

func (n varNode) evalBool(Vars) (bool, error) {
	return false, fmt.Errorf("expression must be a comparison, got a bare variable")
}

type arithNode struct {
	op          tokenKind
	left, right node
}

func (n arithNode) eval(vars Vars) (decimal.Decimal, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.op {
	case tokPlus:
		return left.Add(right), nil
	case tokMinus:
		return left.Sub(right), nil
	case tokStar:
		return left.Mul(right), nil
	default: // tokSlash
		if right.IsZero() {
			return decimal.Zero, fmt.Errorf("division by zero")
		}
		return left.Div(right), nil
	}
}

func (n arithNode) evalBool(Vars) (bool, error) {
	return false, fmt.Errorf("expression must be a comparison, got arithmetic")
}

type negateNode struct {
	operand node
}

func (n negateNode) eval(vars Vars) (decimal.Decimal, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

func (n negateNode) evalBool(Vars) (bool, error) {
	return false, fmt.Errorf("expression must be a comparison, got arithmetic")
}

type comparisonNode struct {
	op          tokenKind
	left, right node
}

func (n comparisonNode) eval(Vars) (decimal.Decimal, error) {
	return decimal.Zero, fmt.Errorf("comparison cannot be used as a number")
}

func (n comparisonNode) evalBool(vars Vars) (bool, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return false, err
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return false, err
	}

	cmp := left.Cmp(right)
	switch n.op {
	case tokGT:
		return cmp > 0, nil
	case tokLT:
		return cmp < 0, nil
	case tokGE:
		return cmp >= 0, nil
	case tokLE:
		return cmp <= 0, nil
	case tokEQ:
		return cmp == 0, nil
	default: // tokNE
		return cmp != 0, nil
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// parseComparison parses exactly one comparison between two sums.
func (p *parser) parseComparison() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	op := p.peek()
	if !isComparison(op.kind) {
		return nil, fmt.Errorf("expected comparison operator, got %q at position %d", op.text, op.pos)
	}
	p.next()

	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	return comparisonNode{op: op.kind, left: left, right: right}, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokPlus || p.peek().kind == tokMinus {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = arithNode{op: op.kind, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokStar || p.peek().kind == tokSlash {
		op := p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = arithNode{op: op.kind, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (node, error) {
	t := p.peek()

	switch t.kind {
	case tokNumber:
		p.next()
		value, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		return numberNode{value: value}, nil

	case tokIdent:
		p.next()
		f, ok := variableField(t.text)
		if !ok {
			return nil, fmt.Errorf("unknown variable %q at position %d", t.text, t.pos)
		}
		return varNode{field: f}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", p.peek().pos)
		}
		p.next()
		return inner, nil

	case tokMinus:
		p.next()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return negateNode{operand: operand}, nil

	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
