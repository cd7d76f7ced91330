// Package repl implements the interactive evaluator started by "pnc repl"
// and by "pnc eval" when stdin is a terminal. Each line is lexed, parsed and
// evaluated; the scrollback shows the input, the rendered tree and the value,
// or the parse error. Up/Down recall earlier lines, including those stored
// in the history database.
package repl
