// Package parser turns boolean query strings into expression trees. The
// grammar: bare terms, AND, OR, unary NOT, parentheses, quoted phrases,
// and PHRASE(t1 t2 ...). Precedence is NOT over AND over OR. Malformed
// input fails with ErrQuerySyntax, never a partial parse.
package parser

import (
	"fmt"
	"strings"
)

// Node is one vertex of a parsed boolean expression tree.
type Node interface {
	fmt.Stringer
	node()
}

// Term matches documents containing a single term.
type Term struct {
	Value string
}

// Phrase matches documents containing the terms at consecutive positions,
// in order.
type Phrase struct {
	Terms []string
}

// And matches documents present in both operands.
type And struct {
	Left, Right Node
}

// Or matches documents present in either operand.
type Or struct {
	Left, Right Node
}

// Not matches documents absent from the operand, complemented against the
// whole corpus.
type Not struct {
	Expr Node
}

func (Term) node()   {}
func (Phrase) node() {}
func (And) node()    {}
func (Or) node()     {}
func (Not) node()    {}

func (t Term) String() string { return t.Value }

func (p Phrase) String() string {
	return "PHRASE(" + strings.Join(p.Terms, " ") + ")"
}

func (a And) String() string {
	return "(" + a.Left.String() + " AND " + a.Right.String() + ")"
}

func (o Or) String() string {
	return "(" + o.Left.String() + " OR " + o.Right.String() + ")"
}

func (n Not) String() string {
	return "(NOT " + n.Expr.String() + ")"
}
