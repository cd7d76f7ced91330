// File: parser.go
// Title: Polish Notation Recursive Descent Parser
// Description: Builds an expression tree from a token stream. Operators in
//              leading position take exactly two operands; a parenthesized
//              application takes one or more operands which are folded into
//              nested binary nodes. Faults never abort the process: they
//              produce an *ast.Error root plus a ParseError with position.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"
	"strconv"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
	mdwast "github.com/msto63/pnc/foundation/pn/ast"
)

// DefaultMaxDepth bounds the nesting of expressions
const DefaultMaxDepth = 512

// Parser implements recursive descent parsing of Polish-notation expressions.
// A Parser may be reused but not shared between goroutines.
type Parser struct {
	tokens  []Token
	pos     int
	depth   int
	fault   *ParseError
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger *mdwlog.Logger

	// MaxDepth limits expression nesting; 0 means DefaultMaxDepth
	MaxDepth int

	// LegacyUnaryMult reads "(* a)" as (* 0 a) instead of rejecting it
	LegacyUnaryMult bool
}

// ParseError represents a parsing error with position information
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
	Token    Token
}

func (pe *ParseError) Error() string {
	if pe.Token.Type == TokenEOF {
		return fmt.Sprintf("parse error at end of input: %s", pe.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s (near '%s')",
		pe.Line, pe.Column, pe.Message, pe.Token.Value)
}

// New creates a new parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "pn-parser"),
		options: opts,
	}
}

// Parse parses tokens with default options. It never panics; any fault
// yields an *ast.Error.
func Parse(tokens []Token) mdwast.Expr {
	expr, _ := New(Options{}).ParseTokens(tokens)
	return expr
}

// ParseString lexes and parses input
func (p *Parser) ParseString(input string) (mdwast.Expr, error) {
	return p.ParseTokens(Lex(input))
}

// ParseTokens parses a complete token stream into one expression. On failure
// the returned expression is an *ast.Error and the error is a *ParseError.
func (p *Parser) ParseTokens(tokens []Token) (mdwast.Expr, error) {
	p.reset(tokens)

	p.logger.Debug("Starting expression parsing", mdwlog.Fields{
		"tokens": len(tokens),
	})

	expr := p.parseExpression()

	if p.fault == nil && p.peek(0).Type != TokenEOF {
		expr = p.faultf("unexpected %s after complete expression", describe(p.peek(0)))
	}

	if p.fault != nil {
		p.logger.Debug("Expression parsing failed", mdwlog.Fields{
			"error":    p.fault.Message,
			"position": p.fault.Position,
		})
		return expr, p.fault
	}

	p.logger.Debug("Expression parsing completed successfully", mdwlog.Fields{
		"expression": expr.String(),
	})
	return expr, nil
}

func (p *Parser) reset(tokens []Token) {
	// A stream without a terminator is treated as if it had one
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		end := 0
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end = last.Position + len(last.Value)
		}
		terminated := make([]Token, len(tokens), len(tokens)+1)
		copy(terminated, tokens)
		tokens = append(terminated, Token{Type: TokenEOF, Position: end})
	}

	p.tokens = tokens
	p.pos = 0
	p.depth = 0
	p.fault = nil
}

// parseExpression parses Exp ::= OP Exp Exp | '(' OP Exp+ ')' | INTEGER
func (p *Parser) parseExpression() mdwast.Expr {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.options.MaxDepth {
		return p.faultf("expression nested deeper than %d levels", p.options.MaxDepth)
	}

	tok := p.peek(0)
	switch {
	case tok.IsOperator():
		p.advance()
		return p.parseOperatorApplication(tok)
	case tok.Type == TokenLeftParen:
		p.advance()
		return p.parseGroup(tok)
	case tok.Type == TokenInteger:
		p.advance()
		return p.parseInteger(tok)
	case tok.Type == TokenRightParen:
		return p.faultf("unexpected ')'")
	case tok.Type == TokenIllegal:
		return p.faultf("illegal character %q", tok.Value)
	default:
		return p.faultf("unexpected end of input")
	}
}

// parseOperatorApplication parses the two operands of a bare operator
func (p *Parser) parseOperatorApplication(opTok Token) mdwast.Expr {
	left := p.parseExpression()
	if p.fault != nil {
		return left
	}
	right := p.parseExpression()
	if p.fault != nil {
		return right
	}

	p.logger.Trace("Parsed binary application", mdwlog.Fields{
		"operator": opTok.Value,
		"position": opTok.Position,
	})
	return mdwast.NewBinary(operatorFor(opTok.Type), left, right)
}

// parseGroup parses '(' OP Exp+ ')' after the opening parenthesis
func (p *Parser) parseGroup(open Token) mdwast.Expr {
	opTok := p.peek(0)
	if !opTok.IsOperator() {
		return p.faultf("operator required after '('")
	}
	p.advance()

	var operands []mdwast.Expr
	for p.peek(0).Type != TokenRightParen {
		if p.peek(0).Type == TokenEOF {
			return p.faultf("missing ')' for '(' at position %d", open.Position)
		}
		operand := p.parseExpression()
		if p.fault != nil {
			return operand
		}
		operands = append(operands, operand)
	}

	if _, err := p.expect(TokenRightParen); err != nil {
		return p.faultf("%s", err.Error())
	}

	return p.fold(opTok, operands)
}

// fold combines the operands of a parenthesized application. + and - treat
// a single operand as (op 0 a); ^ folds to the right, all others to the left.
func (p *Parser) fold(opTok Token, operands []mdwast.Expr) mdwast.Expr {
	op := operatorFor(opTok.Type)

	switch len(operands) {
	case 0:
		return p.faultAt(opTok, fmt.Sprintf("operator '%s' requires at least one operand", op))
	case 1:
		switch {
		case op == mdwast.OpPlus, op == mdwast.OpMinus:
			return mdwast.NewBinary(op, mdwast.NewLiteral(0), operands[0])
		case op == mdwast.OpMult && p.options.LegacyUnaryMult:
			return mdwast.NewBinary(op, mdwast.NewLiteral(0), operands[0])
		default:
			return p.faultAt(opTok, fmt.Sprintf("operator '%s' requires at least two operands", op))
		}
	}

	if op.RightAssociative() {
		acc := operands[len(operands)-1]
		for i := len(operands) - 2; i >= 0; i-- {
			acc = mdwast.NewBinary(op, operands[i], acc)
		}
		return acc
	}

	acc := operands[0]
	for _, operand := range operands[1:] {
		acc = mdwast.NewBinary(op, acc, operand)
	}
	return acc
}

func (p *Parser) parseInteger(tok Token) mdwast.Expr {
	value, err := strconv.ParseInt(tok.Value, 10, 32)
	if err != nil {
		return p.faultAt(tok, fmt.Sprintf("integer literal %s does not fit in 32 bits", tok.Value))
	}
	return mdwast.NewLiteral(int32(value))
}

// peek returns the token n positions ahead of the cursor. Looking past the
// end yields the final EOF token.
func (p *Parser) peek(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// advance moves the cursor one token forward, stopping at EOF
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// expect consumes the current token if it has the given type
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek(0)
	if tok.Type != tt {
		return tok, fmt.Errorf("expected %s, found %s", tt, describe(tok))
	}
	p.advance()
	return tok, nil
}

// faultf records a fault at the current token
func (p *Parser) faultf(format string, args ...interface{}) mdwast.Expr {
	return p.faultAt(p.peek(0), fmt.Sprintf(format, args...))
}

// faultAt records the first fault and returns the matching error node
func (p *Parser) faultAt(tok Token, message string) mdwast.Expr {
	if p.fault == nil {
		p.fault = &ParseError{
			Message:  message,
			Position: tok.Position,
			Line:     tok.Line,
			Column:   tok.Column,
			Token:    tok,
		}
	}
	return &mdwast.Error{Reason: message}
}

func operatorFor(tt TokenType) mdwast.Op {
	switch tt {
	case TokenPlus:
		return mdwast.OpPlus
	case TokenMinus:
		return mdwast.OpMinus
	case TokenStar:
		return mdwast.OpMult
	default:
		return mdwast.OpPow
	}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenInteger:
		return "integer " + tok.Value
	default:
		return fmt.Sprintf("'%s'", tok.Value)
	}
}
