package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// refParser is an independent precedence-climbing evaluator used to check
// that rendered text means what the generator computed.
type refParser struct {
	s   string
	pos int
	err string
}

func (p *refParser) skip() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) peekOp(ops ...string) string {
	p.skip()
	for _, op := range ops {
		if strings.HasPrefix(p.s[p.pos:], op) {
			return op
		}
	}
	return ""
}

func (p *refParser) equality() uint32 {
	v := p.additive()
	for op := p.peekOp("==", "!="); op != ""; op = p.peekOp("==", "!=") {
		p.pos += len(op)
		v = apply(op, v, p.additive())
	}
	return v
}

func (p *refParser) additive() uint32 {
	v := p.term()
	for op := p.peekOp("+", "-"); op != ""; op = p.peekOp("+", "-") {
		p.pos += len(op)
		v = apply(op, v, p.term())
	}
	return v
}

func (p *refParser) term() uint32 {
	v := p.primary()
	for op := p.peekOp("*", "/"); op != ""; op = p.peekOp("*", "/") {
		p.pos += len(op)
		r := p.primary()
		if op == "/" && r == 0 {
			p.err = "division by zero"
			return 0
		}
		v = apply(op, v, r)
	}
	return v
}

func (p *refParser) primary() uint32 {
	p.skip()
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		v := p.equality()
		p.skip()
		if p.pos >= len(p.s) || p.s[p.pos] != ')' {
			p.err = "missing )"
			return 0
		}
		p.pos++
		return v
	}
	start := p.pos
	for p.pos < len(p.s) && strings.IndexByte("0123456789abcdefxX", p.s[p.pos]) >= 0 {
		p.pos++
	}
	v, err := strconv.ParseUint(p.s[start:p.pos], 0, 32)
	if err != nil {
		p.err = err.Error()
	}
	return uint32(v)
}

func countTokens(expr string) int {
	n := 0
	for i := 0; i < len(expr); {
		switch c := expr[i]; {
		case c == ' ':
			i++
			continue
		case c == '=' || c == '!':
			i += 2
		case c >= '0' && c <= '9':
			for i < len(expr) && strings.IndexByte("0123456789abcdefxX", expr[i]) >= 0 {
				i++
			}
		default:
			i++
		}
		n++
	}
	return n
}

// ============================================================================
// Generator Tests
// ============================================================================

func TestGenerator_RenderedTextMatchesValue(t *testing.T) {
	g := NewGenerator(42, 5)
	for i := 0; i < 2000; i++ {
		expr, want := g.Next()
		p := &refParser{s: expr}
		got := p.equality()
		p.skip()
		if p.err != "" {
			t.Fatalf("%q: %s", expr, p.err)
		}
		if p.pos != len(expr) {
			t.Fatalf("%q: trailing input at %d", expr, p.pos)
		}
		if got != want {
			t.Fatalf("%q = %d, generator said %d", expr, got, want)
		}
	}
}

func TestGenerator_RespectsTokenLimit(t *testing.T) {
	g := NewGenerator(7, 8)
	for i := 0; i < 500; i++ {
		expr, _ := g.Next()
		if n := countTokens(expr); n > 32 {
			t.Fatalf("%q has %d tokens", expr, n)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(1234, 4)
	b := NewGenerator(1234, 4)
	for i := 0; i < 50; i++ {
		ea, va := a.Next()
		eb, vb := b.Next()
		if ea != eb || va != vb {
			t.Fatalf("iteration %d: %q/%d vs %q/%d", i, ea, va, eb, vb)
		}
	}
}

func TestGenerator_DepthZeroIsLiteral(t *testing.T) {
	g := NewGenerator(9, 0)
	expr, v := g.Next()
	parsed, err := strconv.ParseUint(expr, 0, 32)
	if err != nil {
		t.Fatalf("depth 0 produced %q", expr)
	}
	if uint32(parsed) != v {
		t.Errorf("%q has value %d, want %d", expr, v, parsed)
	}
}

func TestWriteExprs_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExprs(&buf, NewGenerator(3, 3), 10); err != nil {
		t.Fatalf("writeExprs: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	for _, line := range lines {
		val, expr, ok := strings.Cut(line, " ")
		if !ok || expr == "" {
			t.Fatalf("malformed line %q", line)
		}
		if _, err := strconv.ParseUint(val, 10, 32); err != nil {
			t.Errorf("line %q: value is not decimal uint32", line)
		}
	}
}
