package filterexpr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokGT
	tokLT
	tokGE
	tokLE
	tokEQ
	tokNE
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits an expression into tokens. Anything outside the fixed grammar
// (numbers, identifiers, the four arithmetic operators, six comparison
// operators, and parentheses) is rejected here, before parsing starts.
func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r >= '0' && r <= '9':
			start := i
			sawDot := false
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.' && !sawDot) {
				if runes[i] == '.' {
					sawDot = true
				}
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i]), pos: start})

		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})

		case r == '>' || r == '<' || r == '=' || r == '!':
			start := i
			i++
			twoChar := i < len(runes) && runes[i] == '='
			if twoChar {
				i++
			}
			op := string(runes[start:i])
			kind, ok := comparisonKind(op)
			if !ok {
				return nil, fmt.Errorf("invalid operator %q at position %d", op, start)
			}
			tokens = append(tokens, token{kind: kind, text: op, pos: start})

		case r == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+", pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus, text: "-", pos: i})
			i++
		case r == '*':
			tokens = append(tokens, token{kind: tokStar, text: "*", pos: i})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokSlash, text: "/", pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}

func comparisonKind(op string) (tokenKind, bool) {
	switch op {
	case ">":
		return tokGT, true
	case "<":
		return tokLT, true
	case ">=":
		return tokGE, true
	case "<=":
		return tokLE, true
	case "==":
		return tokEQ, true
	case "!=":
		return tokNE, true
	default:
		return 0, false
	}
}

func isComparison(kind tokenKind) bool {
	switch kind {
	case tokGT, tokLT, tokGE, tokLE, tokEQ, tokNE:
		return true
	default:
		return false
	}
}

// variableField resolves an identifier to one of the three bound fields.
// The Russian column names from the original spreadsheets are accepted as
// aliases of the English names.
func variableField(ident string) (field, bool) {
	switch strings.ToLower(ident) {
	case "limit", "лимиты":
		return fieldLimit, true
	case "stock", "остаток":
		return fieldStock, true
	case "order", "заказ":
		return fieldOrder, true
	default:
		return 0, false
	}
}
