// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pluralexpr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax reports an expression that could not be parsed.
	ErrSyntax = errors.New("invalid plural expression")

	// ErrEval reports a runtime evaluation failure, such as division by zero.
	ErrEval = errors.New("plural expression evaluation failed")
)

// value is an intermediate evaluation result. C treats booleans as integers;
// we keep a flag so callers can distinguish "n != 1" (a plural selector in
// disguise) from an explicit form index.
type value struct {
	n    int64
	cond bool
}

func (v value) truthy() bool {
	return v.n != 0
}

func boolValue(b bool) value {
	if b {
		return value{n: 1, cond: true}
	}

	return value{n: 0, cond: true}
}

// Evaluate computes the rule for the given count and returns the selected
// form index. Boolean results follow the gettext convention: true selects
// form 1, false selects form 0.
func (r *Rule) Evaluate(n int) (int, error) {
	v, err := r.root.eval(int64(n))
	if err != nil {
		return 0, err
	}

	if v.cond {
		if v.truthy() {
			return 1, nil
		}

		return 0, nil
	}

	return int(v.n), nil
}

func (t *ternary) eval(n int64) (value, error) {
	cond, err := t.Cond.eval(n)
	if err != nil || t.Then == nil {
		return cond, err
	}

	if cond.truthy() {
		return t.Then.eval(n)
	}

	return t.Else.eval(n)
}

func (o *orExpr) eval(n int64) (value, error) {
	left, err := o.Left.eval(n)
	if err != nil || len(o.Right) == 0 {
		return left, err
	}

	if left.truthy() {
		return boolValue(true), nil
	}

	for _, operand := range o.Right {
		v, err := operand.eval(n)
		if err != nil {
			return value{}, err
		}

		if v.truthy() {
			return boolValue(true), nil
		}
	}

	return boolValue(false), nil
}

func (a *andExpr) eval(n int64) (value, error) {
	left, err := a.Left.eval(n)
	if err != nil || len(a.Right) == 0 {
		return left, err
	}

	if !left.truthy() {
		return boolValue(false), nil
	}

	for _, operand := range a.Right {
		v, err := operand.eval(n)
		if err != nil {
			return value{}, err
		}

		if !v.truthy() {
			return boolValue(false), nil
		}
	}

	return boolValue(true), nil
}

func (c *cmpExpr) eval(n int64) (value, error) {
	left, err := c.Left.eval(n)
	if err != nil || c.Right == nil {
		return left, err
	}

	right, err := c.Right.eval(n)
	if err != nil {
		return value{}, err
	}

	switch c.Op {
	case "==":
		return boolValue(left.n == right.n), nil
	case "!=":
		return boolValue(left.n != right.n), nil
	case "<=":
		return boolValue(left.n <= right.n), nil
	case ">=":
		return boolValue(left.n >= right.n), nil
	case "<":
		return boolValue(left.n < right.n), nil
	case ">":
		return boolValue(left.n > right.n), nil
	}

	return value{}, fmt.Errorf("%w: unknown comparison %q", ErrEval, c.Op)
}

func (a *addExpr) eval(n int64) (value, error) {
	left, err := a.Left.eval(n)
	if err != nil || len(a.Rest) == 0 {
		return left, err
	}

	acc := left.n

	for _, op := range a.Rest {
		term, err := op.Term.eval(n)
		if err != nil {
			return value{}, err
		}

		switch op.Op {
		case "+":
			acc += term.n
		case "-":
			acc -= term.n
		}
	}

	return value{n: acc}, nil
}

func (m *mulExpr) eval(n int64) (value, error) {
	left, err := m.Left.eval(n)
	if err != nil || len(m.Rest) == 0 {
		return left, err
	}

	acc := left.n

	for _, op := range m.Rest {
		term, err := op.Term.eval(n)
		if err != nil {
			return value{}, err
		}

		switch op.Op {
		case "*":
			acc *= term.n
		case "%":
			if term.n == 0 {
				return value{}, fmt.Errorf("%w: modulo by zero", ErrEval)
			}

			acc %= term.n
		case "/":
			if term.n == 0 {
				return value{}, fmt.Errorf("%w: division by zero", ErrEval)
			}

			acc /= term.n
		}
	}

	return value{n: acc}, nil
}

func (u *unary) eval(n int64) (value, error) {
	if u.Not != nil {
		v, err := u.Not.eval(n)
		if err != nil {
			return value{}, err
		}

		return boolValue(!v.truthy()), nil
	}

	return u.Primary.eval(n)
}

func (p *primary) eval(n int64) (value, error) {
	switch {
	case p.N:
		return value{n: n}, nil
	case p.Num != nil:
		return value{n: *p.Num}, nil
	case p.Sub != nil:
		return p.Sub.eval(n)
	}

	return value{}, fmt.Errorf("%w: empty operand", ErrEval)
}
