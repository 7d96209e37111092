package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

// NewMathEvalTool evaluates plain arithmetic expressions. Only numeric
// literals and + - * / // % ^ with parentheses and unary minus are
// understood; anything else is an expected failure, not a crash.
func NewMathEvalTool() agent.Tool {
	return agent.Tool{
		Name:        "math_eval",
		Description: "Safely evaluate an arithmetic expression (+ - * / // % ^, parentheses).",
		SchemaJSON:  `{"type":"object","properties":{"expr":{"type":"string","description":"Arithmetic expression to evaluate"}},"required":["expr"]}`,
		Aliases: map[string][]string{
			"expr": {"expression", "input", "text", "question", "q"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			expr, _ := params["expr"].(string)
			if expr == "" {
				expr = st.Question
			}
			expr = strings.TrimSpace(strings.ReplaceAll(expr, "=", ""))

			value, err := evalArithmetic(expr)
			if err != nil {
				return fmt.Sprintf("ERROR: math_eval: %v", err), nil
			}
			return formatNumber(value), nil
		},
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// evalArithmetic is a small recursive-descent evaluator with the grammar
//
//	expr   = term (("+" | "-") term)*
//	term   = power (("*" | "/" | "//" | "%") power)*
//	power  = unary ("^" power)?          right-associative
//	unary  = "-" unary | primary
//	primary = number | "(" expr ")"
func evalArithmetic(input string) (float64, error) {
	p := &exprParser{src: input}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected input at position %d", p.pos)
	}
	return v, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			floor := false
			if p.pos < len(p.src) && p.src[p.pos] == '/' {
				p.pos++
				floor = true
			}
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			if floor {
				left = math.Floor(left / right)
			} else {
				left /= right
			}
		case '%':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	c := p.peek()
	if c == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.src[start:p.pos])
	}
	return v, nil
}
