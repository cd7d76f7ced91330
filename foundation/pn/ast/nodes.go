// File: nodes.go
// Title: Polish Notation AST Node Definitions
// Description: Defines the closed set of expression nodes produced by the
//              parser: integer literals, binary operator applications and the
//              error sentinel that marks a parse fault.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial AST node definitions

package ast

import (
	"fmt"
	"strconv"
)

// Expr is the interface implemented by every expression node. The set of
// implementations is closed: *Literal, *Binary and *Error.
type Expr interface {
	// String renders the node as fully parenthesized prefix text. A node that
	// is or contains an error renders as "error".
	String() string

	// IsError reports whether the node or any descendant is an *Error
	IsError() bool

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	exprNode() // marker method
}

// Op identifies a binary operator
type Op int

const (
	OpPlus Op = iota
	OpMinus
	OpMult
	OpPow
)

// String returns the operator symbol
func (o Op) String() string {
	switch o {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMult:
		return "*"
	case OpPow:
		return "^"
	default:
		return "?" + strconv.Itoa(int(o))
	}
}

// Name returns a readable operator name
func (o Op) Name() string {
	switch o {
	case OpPlus:
		return "plus"
	case OpMinus:
		return "minus"
	case OpMult:
		return "mult"
	case OpPow:
		return "pow"
	default:
		return "unknown"
	}
}

// RightAssociative reports whether a k-ary application folds from the right
func (o Op) RightAssociative() bool {
	return o == OpPow
}

// Literal is a 32-bit signed integer constant
type Literal struct {
	Value int32
}

// Binary applies Op to two operands. A Binary exclusively owns its children.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

// Error marks a parse fault. Reason is kept for diagnostics only and is
// never part of the rendered text.
type Error struct {
	Reason string
}

// NewLiteral creates a literal node
func NewLiteral(value int32) *Literal {
	return &Literal{Value: value}
}

// NewBinary creates a binary node
func NewBinary(op Op, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// NewError creates an error node
func NewError(format string, args ...interface{}) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

func (*Literal) exprNode() {}
func (*Binary) exprNode()  {}
func (*Error) exprNode()   {}

// String returns the decimal value
func (l *Literal) String() string {
	return strconv.FormatInt(int64(l.Value), 10)
}

// IsError is always false for literals
func (l *Literal) IsError() bool {
	return false
}

// Accept calls visitor.VisitLiteral
func (l *Literal) Accept(visitor Visitor) interface{} {
	return visitor.VisitLiteral(l)
}

// String renders "(op left right)", or "error" if either side is erroring
func (b *Binary) String() string {
	text, ok := render(b)
	if !ok {
		return errorText
	}
	return text
}

// IsError is true if either operand is erroring
func (b *Binary) IsError() bool {
	return b.Left.IsError() || b.Right.IsError()
}

// Accept calls visitor.VisitBinary
func (b *Binary) Accept(visitor Visitor) interface{} {
	return visitor.VisitBinary(b)
}

// String always renders "error"
func (e *Error) String() string {
	return errorText
}

// IsError is always true
func (e *Error) IsError() bool {
	return true
}

// Accept calls visitor.VisitError
func (e *Error) Accept(visitor Visitor) interface{} {
	return visitor.VisitError(e)
}

const errorText = "error"

// render builds the text of a subtree in a single pass and reports whether
// the subtree is free of errors.
func render(expr Expr) (string, bool) {
	switch n := expr.(type) {
	case *Literal:
		return n.String(), true
	case *Binary:
		left, ok := render(n.Left)
		if !ok {
			return errorText, false
		}
		right, ok := render(n.Right)
		if !ok {
			return errorText, false
		}
		return "(" + n.Op.String() + " " + left + " " + right + ")", true
	default:
		return errorText, false
	}
}

// FirstError returns the leftmost *Error in the tree, or nil if there is none
func FirstError(expr Expr) *Error {
	switch n := expr.(type) {
	case *Error:
		return n
	case *Binary:
		if e := FirstError(n.Left); e != nil {
			return e
		}
		return FirstError(n.Right)
	default:
		return nil
	}
}
