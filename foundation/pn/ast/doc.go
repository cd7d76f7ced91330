// File: doc.go
// Title: Polish Notation AST Package Documentation
// Description: Package documentation for the expression tree.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial AST implementation

/*
Package ast defines the expression tree of the Polish-notation language.

An expression is one of three node kinds:

  - *Literal holds a 32-bit signed integer
  - *Binary applies one of + - * ^ to a left and a right operand
  - *Error marks a parse fault

Trees are built by the parser and never modified afterwards. An *Error
anywhere in a tree poisons every ancestor: IsError reports true and String
renders "error" for the whole affected subtree. Eval refuses such trees with
ErrParseFault.

Arithmetic wraps around on overflow exactly like Go's int32. A negative
exponent does not fail; the power yields 1 and the Evaluator's
OnNegativeExponent hook is told about it.

	expr := ast.NewBinary(ast.OpPlus, ast.NewLiteral(1), ast.NewLiteral(25))
	expr.String()           // "(+ 1 25)"
	v, err := ast.Eval(expr) // 26, nil
*/
package ast
