// File: engine.go
// Title: Polish Notation Evaluation Engine
// Description: High-level entry point that runs lexing, parsing, evaluation
//              and rendering for one input and reports everything in a Result.
//              Used by the CLI, the REPL and the evaluation server.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial engine implementation

package pn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
	mdwast "github.com/msto63/pnc/foundation/pn/ast"
	mdwparser "github.com/msto63/pnc/foundation/pn/parser"
	mdwstringx "github.com/msto63/pnc/foundation/utils/stringx"
)

// DefaultMaxInputLength is used when Options.MaxInputLength is zero
const DefaultMaxInputLength = 1 << 20

// Engine evaluates Polish-notation expressions. It holds no per-evaluation
// state and is safe for concurrent use.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures the engine
type Options struct {
	Logger          *mdwlog.Logger
	MaxDepth        int
	MaxInputLength  int
	LegacyUnaryMult bool
}

// Result describes the outcome of one evaluation
type Result struct {
	Input  string
	Tokens []mdwparser.Token
	Expr   mdwast.Expr

	// AST is the rendered expression; "error" for rejected input
	AST string

	// Value is only meaningful when OK is true
	Value int32
	OK    bool

	// Err is a *mdwerror.Error with code PN_SYNTAX, INVALID_INPUT or CANCELED
	Err error

	// Diagnostics holds non-fatal findings such as negative exponents
	Diagnostics []string

	Stats    mdwast.Stats
	Duration time.Duration
}

// ValueText returns the decimal value, or "error" if evaluation failed
func (r *Result) ValueText() string {
	if !r.OK {
		return "error"
	}
	return strconv.FormatInt(int64(r.Value), 10)
}

// LegacyValue returns the value, or ast.PoisonValue if evaluation failed
func (r *Result) LegacyValue() int32 {
	if !r.OK {
		return mdwast.PoisonValue
	}
	return r.Value
}

// New creates a new engine with the given options
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = mdwparser.DefaultMaxDepth
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}

	return &Engine{
		logger:  opts.Logger.WithField("component", "pn-engine"),
		options: opts,
	}
}

// Parse lexes and parses input without evaluating it
func (e *Engine) Parse(input string) (mdwast.Expr, error) {
	if err := e.validateInput(input); err != nil {
		return &mdwast.Error{Reason: err.Error()}, err
	}
	expr, err := e.newParser().ParseString(input)
	if err != nil {
		return expr, e.wrapParseError(err, input)
	}
	return expr, nil
}

// Evaluate runs the full pipeline for input. It never returns nil; failures
// are reported through Result.OK and Result.Err.
func (e *Engine) Evaluate(ctx context.Context, input string) *Result {
	start := time.Now()
	result := &Result{Input: input}
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.reject(mdwerror.Wrap(err, "evaluation canceled").
			WithCode(mdwerror.CodeCanceled).
			WithOperation("pn.Evaluate"))
		return result
	}

	if err := e.validateInput(input); err != nil {
		result.reject(err)
		e.logger.Info("Input rejected", mdwlog.Fields{"length": len(input), "error": err.Error()})
		return result
	}

	timer := e.logger.StartTimer("evaluate").WithField("input", mdwstringx.Truncate(mdwstringx.Compact(input), 80, "..."))

	result.Tokens = mdwparser.Lex(input)
	expr, parseErr := e.newParser().ParseTokens(result.Tokens)
	result.Expr = expr
	result.AST = expr.String()
	result.Stats = mdwast.CollectStats(expr)

	if parseErr != nil {
		result.Err = e.wrapParseError(parseErr, input)
		timer.WithField("ok", false).Stop()
		return result
	}

	evaluator := mdwast.Evaluator{
		OnNegativeExponent: func(base, exponent int32) {
			msg := fmt.Sprintf("negative exponent %d for base %d, power taken as 1", exponent, base)
			result.Diagnostics = append(result.Diagnostics, msg)
			e.logger.Warn("Negative exponent", mdwlog.Fields{"base": base, "exponent": exponent})
		},
	}

	value, err := evaluator.Eval(expr)
	if err != nil {
		// unreachable for trees that parsed cleanly
		result.Err = mdwerror.Wrap(err, "evaluation failed").
			WithCode(mdwerror.CodeEval).
			WithOperation("pn.Evaluate")
		timer.StopWithError(result.Err)
		return result
	}

	result.Value = value
	result.OK = true
	timer.WithField("value", value).Stop()
	return result
}

func (e *Engine) newParser() *mdwparser.Parser {
	return mdwparser.New(mdwparser.Options{
		Logger:          e.logger,
		MaxDepth:        e.options.MaxDepth,
		LegacyUnaryMult: e.options.LegacyUnaryMult,
	})
}

func (e *Engine) validateInput(input string) error {
	if len(input) > e.options.MaxInputLength {
		return mdwerror.New(fmt.Sprintf("input exceeds maximum length: %d > %d",
			len(input), e.options.MaxInputLength)).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("pn.validateInput").
			WithDetail("length", len(input)).
			WithDetail("max_length", e.options.MaxInputLength)
	}
	return nil
}

func (e *Engine) wrapParseError(err error, input string) error {
	wrapped := mdwerror.Wrap(err, "syntax error").
		WithCode(mdwerror.CodeSyntax).
		WithOperation("pn.Parse")

	var parseErr *mdwparser.ParseError
	if errors.As(err, &parseErr) {
		wrapped.WithDetail("position", parseErr.Position).
			WithDetail("line", parseErr.Line).
			WithDetail("column", parseErr.Column).
			WithDetail("reason", parseErr.Message)
		if parseErr.Token.Type != mdwparser.TokenEOF {
			wrapped.WithDetail("token", parseErr.Token.Value)
		}
	}

	e.logger.Info("Expression rejected", mdwlog.Fields{
		"input":  mdwstringx.Truncate(mdwstringx.Compact(input), 80, "..."),
		"reason": err.Error(),
	})
	return wrapped
}

func (r *Result) reject(err error) {
	r.Err = err
	r.Expr = &mdwast.Error{Reason: err.Error()}
	r.AST = r.Expr.String()
}
