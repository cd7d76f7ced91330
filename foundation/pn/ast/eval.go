// File: eval.go
// Title: Expression Evaluation
// Description: Evaluates an expression tree to a 32-bit integer using
//              two's-complement wraparound. Erroring trees yield ErrParseFault
//              instead of a value.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"errors"
	"fmt"
)

// ErrParseFault is returned when the evaluated tree contains an *Error node
var ErrParseFault = errors.New("parse fault")

// PoisonValue is the integer historically used in place of a result for
// erroring trees. See EvalOrPoison.
const PoisonValue int32 = -1000000

// Evaluator evaluates expression trees. The zero value is ready to use.
type Evaluator struct {
	// OnNegativeExponent is called whenever ^ meets a negative exponent.
	// The power evaluates to 1 in that case; the tree is not poisoned.
	OnNegativeExponent func(base, exponent int32)
}

// Eval evaluates expr with a zero Evaluator
func Eval(expr Expr) (int32, error) {
	var ev Evaluator
	return ev.Eval(expr)
}

// EvalOrPoison evaluates expr and maps any failure to PoisonValue
func EvalOrPoison(expr Expr) int32 {
	v, err := Eval(expr)
	if err != nil {
		return PoisonValue
	}
	return v
}

// Eval returns the value of expr. If expr is erroring the result is an error
// wrapping ErrParseFault with the reason of the leftmost fault.
func (ev *Evaluator) Eval(expr Expr) (int32, error) {
	if expr == nil {
		return 0, fmt.Errorf("%w: empty expression", ErrParseFault)
	}
	if fault := FirstError(expr); fault != nil {
		return 0, fmt.Errorf("%w: %s", ErrParseFault, fault.Reason)
	}
	return ev.eval(expr), nil
}

// eval assumes an error-free tree
func (ev *Evaluator) eval(expr Expr) int32 {
	switch n := expr.(type) {
	case *Literal:
		return n.Value
	case *Binary:
		left := ev.eval(n.Left)
		right := ev.eval(n.Right)
		return ev.apply(n.Op, left, right)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", expr))
	}
}

func (ev *Evaluator) apply(op Op, left, right int32) int32 {
	switch op {
	case OpPlus:
		return left + right
	case OpMinus:
		return left - right
	case OpMult:
		return left * right
	case OpPow:
		if right < 0 {
			if ev.OnNegativeExponent != nil {
				ev.OnNegativeExponent(left, right)
			}
			return 1
		}
		return Pow32(left, right)
	default:
		panic(fmt.Sprintf("ast: unknown operator %d", int(op)))
	}
}

// Pow32 raises base to a non-negative exponent by repeated squaring with
// 32-bit wraparound. Pow32(0, 0) is 1.
func Pow32(base, exponent int32) int32 {
	result := int32(1)
	for exponent > 0 {
		if exponent&1 == 1 {
			result *= base
		}
		base *= base
		exponent >>= 1
	}
	return result
}
