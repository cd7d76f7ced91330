package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
	mdwast "github.com/msto63/pnc/foundation/pn/ast"
)

func newTestParser(opts Options) *Parser {
	opts.Logger = mdwlog.NewNop()
	return New(opts)
}

func TestParse_ValidExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
		value int32
	}{
		{"+ 1 25", "(+ 1 25)", 26},
		{"- + 3 2 1", "(- (+ 3 2) 1)", 4},
		{"(- 3 2 1)", "(- (- 3 2) 1)", 0},
		{"(^ 3 2 1)", "(^ 3 (^ 2 1))", 9},
		{"(- 2)", "(- 0 2)", -2},
		{"(+ 3)", "(+ 0 3)", 3},
		{"(+ 1 2 3 4)", "(+ (+ (+ 1 2) 3) 4)", 10},
		{"(* 2 3 4)", "(* (* 2 3) 4)", 24},
		{"(^ 2 3 2)", "(^ 2 (^ 3 2))", 512},
		{"(+ 1 2)", "(+ 1 2)", 3},
		{"* 2 (+ 1 1)", "(* 2 (+ 1 1))", 4},
		{"(+ (* 2 3) (- 10 4))", "(+ (* 2 3) (- 10 4))", 12},
		{"^ 2 10", "(^ 2 10)", 1024},
		{"  42  ", "42", 42},
		{"007", "7", 7},
		{"\n+\t1\n2", "(+ 1 2)", 3},
		{"(- (+ 1))", "(- 0 (+ 0 1))", -1},
		{"2147483647", "2147483647", math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := newTestParser(Options{}).ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString(%q) error = %v", tt.input, err)
			}
			if expr.IsError() {
				t.Fatalf("ParseString(%q) produced an error tree", tt.input)
			}
			if got := expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}

			value, err := mdwast.Eval(expr)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if value != tt.value {
				t.Errorf("Eval() = %d, want %d", value, tt.value)
			}
		})
	}
}

func TestParse_Faults(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"(* 4)", "requires at least two operands"},
		{"(^ 5)", "requires at least two operands"},
		{"()", "operator required after '('"},
		{"(+)", "requires at least one operand"},
		{"x", "illegal character"},
		{"", "unexpected end of input"},
		{"   ", "unexpected end of input"},
		{"1 2", "after complete expression"},
		{"+ 1 2 )", "after complete expression"},
		{"+ 1", "unexpected end of input"},
		{")", "unexpected ')'"},
		{"(+ 1 2", "missing ')'"},
		{"+ 1 x", "illegal character"},
		{"(1 2)", "operator required after '('"},
		{"2147483648", "does not fit in 32 bits"},
		{"99999999999999999999", "does not fit in 32 bits"},
		{"(+ 1 (* 2))", "requires at least two operands"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := newTestParser(Options{}).ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) = %v, want error", tt.input, expr)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.message)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error is %T, want *ParseError", err)
			}

			if !expr.IsError() {
				t.Errorf("expression %v should be erroring", expr)
			}
			if got := expr.String(); got != "error" {
				t.Errorf("String() = %q, want \"error\"", got)
			}
			if _, evalErr := mdwast.Eval(expr); !errors.Is(evalErr, mdwast.ErrParseFault) {
				t.Errorf("Eval() error = %v, want ErrParseFault", evalErr)
			}
		})
	}
}

func TestParse_PackageLevel(t *testing.T) {
	if got := Parse(Lex("(+ 1 2 3)")).String(); got != "(+ (+ 1 2) 3)" {
		t.Errorf("Parse() = %q", got)
	}
	if !Parse(nil).IsError() {
		t.Error("Parse(nil) should be an error")
	}
}

func TestParse_TokensWithoutEOF(t *testing.T) {
	tokens := []Token{
		{Type: TokenPlus, Value: "+"},
		{Type: TokenInteger, Value: "2", Position: 2},
		{Type: TokenInteger, Value: "3", Position: 4},
	}
	expr, err := newTestParser(Options{}).ParseTokens(tokens)
	if err != nil {
		t.Fatalf("ParseTokens() error = %v", err)
	}
	if got := expr.String(); got != "(+ 2 3)" {
		t.Errorf("ParseTokens() = %q", got)
	}
}

func TestParse_LiteralRoundTrip(t *testing.T) {
	values := []int32{0, 1, 9, 10, 255, 65536, 1 << 30, math.MaxInt32}
	for _, n := range values {
		text := strconv.FormatInt(int64(n), 10)
		v, err := mdwast.Eval(Parse(Lex(text)))
		if err != nil {
			t.Fatalf("Eval(%s) error = %v", text, err)
		}
		if v != n {
			t.Errorf("Eval(%s) = %d", text, v)
		}
	}
}

func TestParse_RenderedTextReparses(t *testing.T) {
	inputs := []string{
		"(- 3 2 1)",
		"(^ 3 2 1)",
		"(- 2)",
		"* + 1 2 (^ 2 2 2)",
		"(+ (* 1 2 3) 4 (- 9))",
	}
	for _, input := range inputs {
		first := Parse(Lex(input))
		second := Parse(Lex(first.String()))
		if first.String() != second.String() {
			t.Errorf("%q: rendered %q re-renders as %q", input, first, second)
		}
		v1, _ := mdwast.Eval(first)
		v2, _ := mdwast.Eval(second)
		if v1 != v2 {
			t.Errorf("%q: value changed from %d to %d", input, v1, v2)
		}
	}
}

func TestParseError_Position(t *testing.T) {
	_, err := newTestParser(Options{}).ParseString("+ 1\n  x")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Position != 6 || parseErr.Line != 2 || parseErr.Column != 3 {
		t.Errorf("position = %d line %d column %d, want 6/2/3",
			parseErr.Position, parseErr.Line, parseErr.Column)
	}
	if parseErr.Token.Value != "x" {
		t.Errorf("token = %v, want x", parseErr.Token)
	}
	want := "parse error at line 2, column 3: illegal character \"x\" (near 'x')"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParseError_AtEndOfInput(t *testing.T) {
	_, err := newTestParser(Options{}).ParseString("(+ 1 2")
	if err == nil || !strings.HasPrefix(err.Error(), "parse error at end of input") {
		t.Errorf("error = %v, want end of input error", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	input := strings.Repeat("+ 1 ", 600) + "1"

	_, err := newTestParser(Options{}).ParseString(input)
	if err == nil || !strings.Contains(err.Error(), "nested deeper than 512") {
		t.Fatalf("default depth: error = %v, want depth error", err)
	}

	expr, err := newTestParser(Options{MaxDepth: 1000}).ParseString(input)
	if err != nil {
		t.Fatalf("MaxDepth 1000: error = %v", err)
	}
	if v, _ := mdwast.Eval(expr); v != 601 {
		t.Errorf("Eval() = %d, want 601", v)
	}

	nested := strings.Repeat("(+ ", 20) + "1" + strings.Repeat(")", 20)
	if _, err := newTestParser(Options{MaxDepth: 10}).ParseString(nested); err == nil {
		t.Error("parenthesized nesting should count towards MaxDepth")
	}
}

func TestParse_LegacyUnaryMult(t *testing.T) {
	expr, err := newTestParser(Options{LegacyUnaryMult: true}).ParseString("(* 4)")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got := expr.String(); got != "(* 0 4)" {
		t.Errorf("String() = %q, want (* 0 4)", got)
	}
	if _, err := newTestParser(Options{LegacyUnaryMult: true}).ParseString("(^ 4)"); err == nil {
		t.Error("unary ^ must stay an error")
	}
}

func TestParser_Reuse(t *testing.T) {
	p := newTestParser(Options{})
	if _, err := p.ParseString("x"); err == nil {
		t.Fatal("first parse should fail")
	}
	expr, err := p.ParseString("+ 2 2")
	if err != nil {
		t.Fatalf("second parse error = %v", err)
	}
	if expr.String() != "(+ 2 2)" {
		t.Errorf("second parse = %v", expr)
	}
}

func TestParser_CursorHelpers(t *testing.T) {
	p := newTestParser(Options{})
	p.reset(Lex("( + 1"))

	if tok := p.peek(1); tok.Type != TokenPlus {
		t.Errorf("peek(1) = %v, want PLUS", tok)
	}
	if tok := p.peek(10); tok.Type != TokenEOF {
		t.Errorf("peek(10) = %v, want EOF", tok)
	}
	if _, err := p.expect(TokenInteger); err == nil {
		t.Error("expect(INTEGER) on '(' should fail")
	}
	if _, err := p.expect(TokenLeftParen); err != nil {
		t.Errorf("expect(LEFT_PAREN) error = %v", err)
	}
	if tok := p.peek(0); tok.Type != TokenPlus {
		t.Errorf("after expect, peek(0) = %v, want PLUS", tok)
	}
}
