// File: doc.go
// Title: Polish Notation Parser Package Documentation
// Description: Package documentation for lexing and parsing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

/*
Package parser turns Polish-notation arithmetic text into an expression tree.

Grammar:

	Exp ::= OP Exp Exp | '(' OP Exp+ ')' | INTEGER
	OP  ::= '+' | '-' | '*' | '^'

A bare operator takes exactly two operands. A parenthesized application
takes one or more:

	(+ 1 2 3)   ->  (+ (+ 1 2) 3)       left fold
	(^ 2 3 2)   ->  (^ 2 (^ 3 2))       right fold
	(- 5)       ->  (- 0 5)
	(* 5)       ->  error               unless Options.LegacyUnaryMult
	(^ 5)       ->  error

Literals must fit in a signed 32-bit integer. Whitespace separates tokens
and is otherwise ignored; any other character is illegal.

Parsing never panics. Malformed input produces an *ast.Error root and, from
Parser.ParseTokens, a *ParseError naming the offending token.

	expr := parser.Parse(parser.Lex("(- 3 2 1)"))
	fmt.Println(expr) // (- (- 3 2) 1)
*/
package parser
