// File: visitor.go
// Title: AST Visitor
// Description: Visitor interface for walking expression trees and a visitor
//              that collects shape statistics.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial visitor implementation

package ast

// Visitor is implemented by tree walkers. Each method returns an arbitrary
// result that is passed back through Accept.
type Visitor interface {
	VisitLiteral(lit *Literal) interface{}
	VisitBinary(bin *Binary) interface{}
	VisitError(e *Error) interface{}
}

// Stats describes the shape of an expression tree
type Stats struct {
	Nodes     int        `json:"nodes"`
	Literals  int        `json:"literals"`
	Errors    int        `json:"errors"`
	Depth     int        `json:"depth"`
	Operators map[Op]int `json:"-"`
}

// StatsVisitor collects Stats. Accept returns the depth of the visited node.
type StatsVisitor struct {
	stats Stats
}

// NewStatsVisitor creates an empty StatsVisitor
func NewStatsVisitor() *StatsVisitor {
	return &StatsVisitor{stats: Stats{Operators: make(map[Op]int)}}
}

// Stats returns the collected statistics
func (sv *StatsVisitor) Stats() Stats {
	return sv.stats
}

func (sv *StatsVisitor) VisitLiteral(lit *Literal) interface{} {
	sv.stats.Nodes++
	sv.stats.Literals++
	sv.observe(1)
	return 1
}

func (sv *StatsVisitor) VisitBinary(bin *Binary) interface{} {
	sv.stats.Nodes++
	sv.stats.Operators[bin.Op]++

	left := bin.Left.Accept(sv).(int)
	right := bin.Right.Accept(sv).(int)

	depth := left
	if right > depth {
		depth = right
	}
	depth++
	sv.observe(depth)
	return depth
}

func (sv *StatsVisitor) VisitError(e *Error) interface{} {
	sv.stats.Nodes++
	sv.stats.Errors++
	sv.observe(1)
	return 1
}

func (sv *StatsVisitor) observe(depth int) {
	if depth > sv.stats.Depth {
		sv.stats.Depth = depth
	}
}

// CollectStats walks expr and returns its statistics
func CollectStats(expr Expr) Stats {
	sv := NewStatsVisitor()
	if expr != nil {
		expr.Accept(sv)
	}
	return sv.Stats()
}
