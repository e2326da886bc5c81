// expr_eval.go - Recursive range evaluator for monitor expressions

package main

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrEmptyExpression     = errors.New("empty expression")
	ErrInvalidAtom         = errors.New("invalid operand")
	ErrNoOperator          = errors.New("no dominant operator")
	ErrDivideByZero        = errors.New("division by zero")
	ErrUnknownRegister     = errors.New("unknown register")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	errBadRange            = errors.New("token range out of bounds")
)

// EvalError carries the token range (and register name, if any) that
// failed to evaluate.
type EvalError struct {
	Err    error
	Lo, Hi int
	Name   string
}

func (e *EvalError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%v: $%s", e.Err, e.Name)
	case e.Lo >= e.Hi:
		return fmt.Sprintf("%v at token %d", e.Err, e.Lo)
	default:
		return fmt.Sprintf("%v in tokens %d-%d", e.Err, e.Lo, e.Hi)
	}
}

func (e *EvalError) Unwrap() error { return e.Err }

// RegisterFile resolves a bare register name (no '$') to its value.
type RegisterFile interface {
	RegisterValue(name string) (uint32, bool)
}

// PhysMemory reads size bytes of guest physical memory.
type PhysMemory interface {
	Read(addr uint32, size int) uint32
}

// ExprEvaluator is what the watchpoint scanner needs.
type ExprEvaluator interface {
	Evaluate(expr string) (uint32, error)
}

// Evaluator evaluates monitor expressions against a machine state.
// It holds no scratch state, so one Evaluator may serve concurrent callers
// as long as the collaborators allow it.
type Evaluator struct {
	regs RegisterFile
	mem  PhysMemory
}

func NewEvaluator(regs RegisterFile, mem PhysMemory) *Evaluator {
	return &Evaluator{regs: regs, mem: mem}
}

// Evaluate tokenizes, classifies and evaluates expr.
func (ev *Evaluator) Evaluate(expr string) (uint32, error) {
	var buf tokenBuffer
	if err := tokenize(expr, &buf); err != nil {
		return 0, err
	}
	markDereferences(&buf)
	toks := buf.Tokens()
	return ev.eval(toks, 0, len(toks)-1)
}

const (
	weightAnd  = 0
	weightEq   = 1
	weightAdd  = 4
	weightMul  = 5
	weightNone = 1000
)

func binaryWeight(k TokenKind) (int, bool) {
	switch k {
	case TokAnd:
		return weightAnd, true
	case TokEqual, TokNotEqual:
		return weightEq, true
	case TokPlus, TokMinus:
		return weightAdd, true
	case TokMultiply, TokDivide:
		return weightMul, true
	}
	return weightNone, false
}

func (ev *Evaluator) eval(toks []Token, lo, hi int) (uint32, error) {
	if lo > hi {
		return 0, &EvalError{Err: ErrEmptyExpression, Lo: lo, Hi: hi}
	}
	if lo < 0 || hi >= len(toks) {
		return 0, &EvalError{Err: errBadRange, Lo: lo, Hi: hi}
	}

	if lo == hi {
		return ev.atom(toks[lo], lo)
	}

	if wrapped(toks, lo, hi) {
		return ev.eval(toks, lo+1, hi-1)
	}

	op, err := dominantOperator(toks, lo, hi)
	if err != nil {
		return 0, err
	}

	if op < 0 || toks[op].Kind == TokDeref {
		if toks[lo].Kind != TokDeref {
			return 0, &EvalError{Err: ErrNoOperator, Lo: lo, Hi: hi}
		}
		addr, err := ev.eval(toks, lo+1, hi)
		if err != nil {
			return 0, err
		}
		return ev.mem.Read(addr, 4), nil
	}

	if toks[op].Kind == TokAnd {
		return 0, &EvalError{Err: ErrUnsupportedOperator, Lo: op, Hi: op}
	}

	lhs, err := ev.eval(toks, lo, op-1)
	if err != nil {
		return 0, err
	}
	rhs, err := ev.eval(toks, op+1, hi)
	if err != nil {
		return 0, err
	}

	switch toks[op].Kind {
	case TokPlus:
		return lhs + rhs, nil
	case TokMinus:
		return lhs - rhs, nil
	case TokMultiply:
		return lhs * rhs, nil
	case TokDivide:
		if rhs == 0 {
			return 0, &EvalError{Err: ErrDivideByZero, Lo: op, Hi: op}
		}
		return lhs / rhs, nil
	case TokEqual:
		return boolWord(lhs == rhs), nil
	case TokNotEqual:
		return boolWord(lhs != rhs), nil
	}
	return 0, &EvalError{Err: ErrNoOperator, Lo: lo, Hi: hi}
}

func (ev *Evaluator) atom(t Token, pos int) (uint32, error) {
	var (
		v   uint64
		err error
	)
	switch t.Kind {
	case TokDec:
		v, err = strconv.ParseUint(t.Text, 10, 32)
	case TokHex:
		v, err = strconv.ParseUint(t.Text[2:], 16, 32)
	case TokRegister:
		name := t.Text[1:]
		if ev.regs == nil {
			return 0, &EvalError{Err: ErrUnknownRegister, Lo: pos, Hi: pos, Name: name}
		}
		val, ok := ev.regs.RegisterValue(name)
		if !ok {
			return 0, &EvalError{Err: ErrUnknownRegister, Lo: pos, Hi: pos, Name: name}
		}
		return val, nil
	default:
		return 0, &EvalError{Err: ErrInvalidAtom, Lo: pos, Hi: pos}
	}
	if err != nil {
		return 0, &EvalError{Err: ErrInvalidAtom, Lo: pos, Hi: pos}
	}
	return uint32(v), nil
}

// wrapped reports whether toks[lo] and toks[hi] are a matching paren pair,
// i.e. depth never drops back to zero before hi.
func wrapped(toks []Token, lo, hi int) bool {
	if toks[lo].Kind != TokLParen || toks[hi].Kind != TokRParen {
		return false
	}
	depth := 0
	for i := lo; i <= hi; i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		}
		if depth == 0 && i < hi {
			return false
		}
		if depth < 0 {
			return false
		}
	}
	return depth == 0
}

// dominantOperator picks the depth-0 operator to split lo..hi at. The
// loosest binding operator wins and ties go right, giving left
// associativity. A dereference is only returned when no binary operator
// exists; -1 means nothing was found.
func dominantOperator(toks []Token, lo, hi int) (int, error) {
	op, minWeight := -1, weightNone
	deref := -1
	depth := 0
	for i := lo; i <= hi; i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
			continue
		case TokRParen:
			depth--
			if depth < 0 {
				return -1, &EvalError{Err: ErrNoOperator, Lo: lo, Hi: hi}
			}
			continue
		case TokDec, TokHex, TokRegister:
			continue
		}
		if depth > 0 {
			continue
		}
		if toks[i].Kind == TokDeref {
			if deref < 0 {
				deref = i
			}
			continue
		}
		if w, ok := binaryWeight(toks[i].Kind); ok && w <= minWeight {
			op, minWeight = i, w
		}
	}
	if op < 0 {
		return deref, nil
	}
	return op, nil
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
