package main

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeRegs is a read-only register file for evaluator tests.
type fakeRegs map[string]uint32

func (r fakeRegs) RegisterValue(name string) (uint32, bool) {
	v, ok := r[name]
	return v, ok
}

// fakeMem serves 32-bit words from a map and counts reads.
type fakeMem struct {
	words map[uint32]uint32
	reads atomic.Int64
	size  atomic.Int64 // last access size
}

func (m *fakeMem) Read(addr uint32, size int) uint32 {
	m.reads.Add(1)
	m.size.Store(int64(size))
	return m.words[addr]
}

func newTestEvaluator() (*Evaluator, *fakeMem) {
	regs := fakeRegs{
		"pc": 0x80000000,
		"sp": 0x80001000,
		"a0": 7,
		"t0": 0x80000010,
	}
	mem := &fakeMem{words: map[uint32]uint32{
		0x80000000: 0x80000010,
		0x80000010: 42,
		0x80001000: 0xCAFEBABE,
	}}
	return NewEvaluator(regs, mem), mem
}

// ---------------------------------------------------------------------------
// Arithmetic and precedence
// ---------------------------------------------------------------------------

func TestEvaluateValues(t *testing.T) {
	tests := []struct {
		expr string
		want uint32
	}{
		{"42", 42},
		{"0x2A", 42},
		{"010", 10},
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"2*3+4", 10},
		{"10-4-3", 3},
		{"100/10/5", 2},
		{"7/2", 3},
		{"((((5))))", 5},
		{"0x10 + 010", 26},
		{"1 == 1", 1},
		{"1 != 1", 0},
		{"1+1 == 2", 1},
		{"2*3 == 6 != 0", 1},
		{"3 == 3 == 1", 1},
		{"0-1", 0xFFFFFFFF},
		{"0xFFFFFFFF + 1", 0},
		{"65536*65536", 0},
		{"4294967295", 0xFFFFFFFF},
		{"0xFFFFFFFF / 2", 0x7FFFFFFF},
		{"  ( 1 + 2 ) * ( 3 - 1 )  ", 6},
	}

	ev, _ := newTestEvaluator()
	for _, tt := range tests {
		got, err := ev.Evaluate(tt.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %#x, want %#x", tt.expr, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Registers and memory
// ---------------------------------------------------------------------------

func TestEvaluateRegistersAndMemory(t *testing.T) {
	tests := []struct {
		expr string
		want uint32
	}{
		{"$pc", 0x80000000},
		{"$sp + 4", 0x80001004},
		{"$a0 * $a0", 49},
		{"*$sp", 0xCAFEBABE},
		{"*0x80000000", 0x80000010},
		{"**0x80000000", 42},
		{"*$pc == $t0", 1},
		{"*$t0 + 1", 43},
		{"2 * *$t0", 84},
		{"*($pc + 16)", 42},
		{"*0x1234", 0},
	}

	ev, mem := newTestEvaluator()
	for _, tt := range tests {
		got, err := ev.Evaluate(tt.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %#x, want %#x", tt.expr, got, tt.want)
		}
	}
	if mem.size.Load() != 4 {
		t.Errorf("dereference read %d bytes, want 4", mem.size.Load())
	}
}

func TestEvaluateChainedDerefReadsTwice(t *testing.T) {
	ev, mem := newTestEvaluator()
	if _, err := ev.Evaluate("**$pc"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := mem.reads.Load(); got != 2 {
		t.Errorf("memory reads = %d, want 2", got)
	}
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrEmptyExpression},
		{"   ", ErrEmptyExpression},
		{"()", ErrEmptyExpression},
		{"-1", ErrEmptyExpression},
		{"1+", ErrEmptyExpression},
		{"1/0", ErrDivideByZero},
		{"1/(2-2)", ErrDivideByZero},
		{"$nope", ErrUnknownRegister},
		{"$pc + $nope", ErrUnknownRegister},
		{"1 && 1", ErrUnsupportedOperator},
		{"1 + (1 && 1)", ErrUnsupportedOperator},
		{"1 == 1 && 2", ErrUnsupportedOperator},
		{"(1", ErrNoOperator},
		{"1)", ErrNoOperator},
		{"1 2", ErrNoOperator},
		{"(1)(2)", ErrNoOperator},
		{"(", ErrInvalidAtom},
		{"+", ErrInvalidAtom},
		{"99999999999", ErrInvalidAtom},
		{"0x100000000", ErrInvalidAtom},
		{"1 @ 2", ErrNoMatch},
	}

	ev, _ := newTestEvaluator()
	for _, tt := range tests {
		got, err := ev.Evaluate(tt.expr)
		if !errors.Is(err, tt.want) {
			t.Errorf("Evaluate(%q) = (%d, %v), want error %v", tt.expr, got, err, tt.want)
		}
		if err != nil && got != 0 {
			t.Errorf("Evaluate(%q) returned partial value %d with error", tt.expr, got)
		}
	}
}

func TestEvaluateUnknownRegisterName(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, err := ev.Evaluate("1 + $bogus")
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("error = %v, want *EvalError", err)
	}
	if evalErr.Name != "bogus" {
		t.Errorf("Name = %q, want %q", evalErr.Name, "bogus")
	}
	if got, want := evalErr.Error(), "unknown register: $bogus"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestEvalErrorEmptyRangeMessage(t *testing.T) {
	ev, _ := newTestEvaluator()
	tests := []struct {
		expr string
		want string
	}{
		{"1+", "empty expression at token 2"},
		{"", "empty expression at token 0"},
		{"()", "empty expression at token 1"},
		{"1 2", "no dominant operator in tokens 0-1"},
	}
	for _, tt := range tests {
		_, err := ev.Evaluate(tt.expr)
		if err == nil {
			t.Fatalf("Evaluate(%q) succeeded", tt.expr)
		}
		if got := err.Error(); got != tt.want {
			t.Errorf("Evaluate(%q) error = %q, want %q", tt.expr, got, tt.want)
		}
		if strings.Contains(err.Error(), "--") {
			t.Errorf("Evaluate(%q) error %q renders a negative range", tt.expr, err)
		}
	}
}

func TestEvaluateNilRegisterFile(t *testing.T) {
	ev := NewEvaluator(nil, &fakeMem{})
	if _, err := ev.Evaluate("$pc"); !errors.Is(err, ErrUnknownRegister) {
		t.Errorf("error = %v, want ErrUnknownRegister", err)
	}
}

func TestEvaluateShortCircuits(t *testing.T) {
	ev, mem := newTestEvaluator()
	if _, err := ev.Evaluate("$nope + *$sp"); !errors.Is(err, ErrUnknownRegister) {
		t.Fatalf("error = %v, want ErrUnknownRegister", err)
	}
	if got := mem.reads.Load(); got != 0 {
		t.Errorf("memory reads after failed left operand = %d, want 0", got)
	}
}

func TestEvalRejectsBadRange(t *testing.T) {
	ev, _ := newTestEvaluator()
	toks := []Token{{TokDec, "1"}}
	if _, err := ev.eval(toks, 0, 3); !errors.Is(err, errBadRange) {
		t.Errorf("eval(0, 3) error = %v, want errBadRange", err)
	}
	if _, err := ev.eval(toks, -1, 0); !errors.Is(err, errBadRange) {
		t.Errorf("eval(-1, 0) error = %v, want errBadRange", err)
	}
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestEvaluateParenthesizedEqualsInterior(t *testing.T) {
	exprs := []string{
		"1+2*3",
		"$sp - $pc",
		"*$t0 / 5",
		"7 == $a0",
		"0 - 1",
		"**$pc",
		"(1+2)*(3+4)",
	}

	ev, _ := newTestEvaluator()
	for _, e := range exprs {
		inner, err1 := ev.Evaluate(e)
		outer, err2 := ev.Evaluate("(" + e + ")")
		if err1 != nil || err2 != nil {
			t.Errorf("%q: errors %v / %v", e, err1, err2)
			continue
		}
		if inner != outer {
			t.Errorf("%q = %d but (%s) = %d", e, inner, e, outer)
		}
	}
}

func TestEvaluateLeftAssociative(t *testing.T) {
	ev, _ := newTestEvaluator()
	tests := []struct {
		flat, grouped string
	}{
		{"20-5-3", "(20-5)-3"},
		{"64/8/2", "(64/8)/2"},
		{"2*3/4", "(2*3)/4"},
		{"9-3+1", "(9-3)+1"},
	}
	for _, tt := range tests {
		a, err1 := ev.Evaluate(tt.flat)
		b, err2 := ev.Evaluate(tt.grouped)
		if err1 != nil || err2 != nil || a != b {
			t.Errorf("%s = %d (%v), %s = %d (%v)", tt.flat, a, err1, tt.grouped, b, err2)
		}
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	ev, _ := newTestEvaluator()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				v, err := ev.Evaluate("(*$pc - $t0) + $a0 * 2")
				if err != nil || v != 14 {
					errs <- errors.New("concurrent evaluation diverged")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
