// File: lexer.go
// Title: Polish Notation Lexical Analyzer
// Description: Converts expression text into a token stream for the parser.
//              Recognizes the four operators, parentheses and decimal integer
//              literals, and records the position of every token.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial lexer implementation

package parser

import (
	"fmt"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenInteger // 0, 42, 007

	// Operators
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenCaret // ^

	// Delimiters
	TokenLeftParen  // (
	TokenRightParen // )
)

// Token represents a lexical token with position information
type Token struct {
	Type     TokenType // Token type
	Value    string    // Token text
	Position int       // Byte position in input
	Line     int       // Line number (1-based)
	Column   int       // Column number (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return fmt.Sprintf("ILLEGAL(%q)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type.String(), t.Value)
	}
}

// IsOperator reports whether the token is one of + - * ^
func (t Token) IsOperator() bool {
	return t.Type.IsOperator()
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenInteger:
		return "INTEGER"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenStar:
		return "STAR"
	case TokenCaret:
		return "CARET"
	case TokenLeftParen:
		return "LEFT_PAREN"
	case TokenRightParen:
		return "RIGHT_PAREN"
	default:
		return "UNKNOWN"
	}
}

// IsOperator reports whether the type is one of the operator tokens
func (tt TokenType) IsOperator() bool {
	return tt >= TokenPlus && tt <= TokenCaret
}

// Lexer performs lexical analysis of expression text
type Lexer struct {
	input    string // Input string
	position int    // Current position in input (points to current char)
	readPos  int    // Current reading position (after current char)
	ch       byte   // Current char under examination
	line     int    // Current line number (1-based)
	column   int    // Current column number (1-based)
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Lex tokenizes input completely. It never fails: characters outside the
// language become TokenIllegal and the slice always ends with TokenEOF.
func Lex(input string) []Token {
	return NewLexer(input).Tokenize()
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position
	line := l.line
	column := l.column

	var tok Token
	switch l.ch {
	case '+':
		tok = newToken(TokenPlus, "+", pos, line, column)
	case '-':
		tok = newToken(TokenMinus, "-", pos, line, column)
	case '*':
		tok = newToken(TokenStar, "*", pos, line, column)
	case '^':
		tok = newToken(TokenCaret, "^", pos, line, column)
	case '(':
		tok = newToken(TokenLeftParen, "(", pos, line, column)
	case ')':
		tok = newToken(TokenRightParen, ")", pos, line, column)
	case 0:
		if l.position >= len(l.input) {
			return newToken(TokenEOF, "", pos, line, column)
		}
		tok = newToken(TokenIllegal, "\x00", pos, line, column)
	default:
		if isDigit(l.ch) {
			// readNumber leaves the lexer on the first non-digit
			return newToken(TokenInteger, l.readNumber(), pos, line, column)
		}
		return newToken(TokenIllegal, l.readIllegal(), pos, line, column)
	}

	l.readChar()
	return tok
}

// Tokenize returns all remaining tokens including the final TokenEOF
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.input)/2+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
	} else {
		l.ch = l.input[l.readPos]
	}

	l.position = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// skipWhitespace skips spaces, tabs and line breaks
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f' {
		l.readChar()
	}
}

// readNumber reads a maximal run of ASCII digits
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readIllegal consumes one complete UTF-8 sequence so a multi-byte character
// yields a single illegal token.
func (l *Lexer) readIllegal() string {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	start := l.position
	for i := 0; i < size; i++ {
		l.readChar()
	}
	return l.input[start : start+size]
}

func newToken(tokenType TokenType, value string, pos, line, column int) Token {
	return Token{Type: tokenType, Value: value, Position: pos, Line: line, Column: column}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
