package engine

import "strings"

const (
	opAlt       = "||"
	opConcat    = "&&"
	opIntersect = "%%"
)

// Expr is a parsed rule expression. The set of implementations is closed:
// Alt, Concat, Intersect and Leaf.
type Expr interface {
	expr()
}

// Alt evaluates operands left to right and keeps the first non-empty result.
type Alt []Expr

// Concat joins the results of every operand in order.
type Concat []Expr

// Intersect keeps the elements of the first operand present in every other one.
type Intersect []Expr

// Leaf is a terminal rule dispatched to a single engine.
type Leaf struct {
	Rule   string
	Engine Engine
}

func (Alt) expr()       {}
func (Concat) expr()    {}
func (Intersect) expr() {}
func (Leaf) expr()      {}

// ParseExpr builds the expression tree for a rule with any regex suffix
// already removed. "||" binds loosest, then "&&", then "%%".
func ParseExpr(rule string) Expr {
	value := strings.TrimSpace(rule)

	switch {
	case strings.Contains(value, opAlt):
		return Alt(parseOperands(value, opAlt))
	case strings.Contains(value, opConcat):
		return Concat(parseOperands(value, opConcat))
	case strings.Contains(value, opIntersect):
		return Intersect(parseOperands(value, opIntersect))
	default:
		return Leaf{Rule: value, Engine: Detect(value)}
	}
}

func parseOperands(rule, op string) []Expr {
	parts := strings.Split(rule, op)
	operands := make([]Expr, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		operands = append(operands, ParseExpr(part))
	}
	return operands
}
