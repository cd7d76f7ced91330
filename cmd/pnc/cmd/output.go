package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/repr"
	"github.com/mattn/go-isatty"

	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/tui/repl"
)

// printer writes evaluation results. The AST goes on one line, the value on
// the next; errors and diagnostics go to errOut.
type printer struct {
	out    io.Writer
	errOut io.Writer
	styled bool
	dump   bool
	legacy bool
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, errOut: errOut, styled: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) print(res *pn.Result) {
	value := res.ValueText()
	if p.legacy {
		value = strconv.FormatInt(int64(res.LegacyValue()), 10)
	}

	if p.styled {
		if res.OK {
			fmt.Fprintln(p.out, repl.ASTStyle.Render(res.AST))
			fmt.Fprintln(p.out, repl.ValueStyle.Render(value))
		} else {
			fmt.Fprintln(p.out, repl.ErrorStyle.Render(res.AST))
			fmt.Fprintln(p.out, repl.ErrorStyle.Render(value))
		}
	} else {
		fmt.Fprintln(p.out, res.AST)
		fmt.Fprintln(p.out, value)
	}

	if p.dump && res.Expr != nil {
		fmt.Fprintln(p.out, repr.String(res.Expr, repr.Indent("  ")))
	}

	if res.Err != nil {
		p.diagnostic(repl.ErrorStyle, "error: "+res.Err.Error())
	}
	for _, d := range res.Diagnostics {
		p.diagnostic(repl.DiagnosticStyle, "warning: "+d)
	}
}

type renderer interface {
	Render(strs ...string) string
}

func (p *printer) diagnostic(style renderer, line string) {
	if isTerminal(p.errOut) {
		line = style.Render(line)
	}
	fmt.Fprintln(p.errOut, line)
}
