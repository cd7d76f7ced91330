// Package pn evaluates Polish-notation integer arithmetic.
//
// Package: pn
// Title: Polish Notation Engine
// Description: Ties the lexer, parser and evaluator together. Subpackages:
//              parser (tokens and grammar) and ast (expression tree, eval).
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation
//
// Usage:
//
//	engine := pn.New(pn.Options{})
//	res := engine.Evaluate(ctx, "(- 3 2 1)")
//	fmt.Println(res.AST, res.ValueText()) // (- (- 3 2) 1) 0
package pn
