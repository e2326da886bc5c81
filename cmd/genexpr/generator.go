package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// exprNode is a generated expression tree. Leaves have op == "".
type exprNode struct {
	op          string
	left, right *exprNode
	text        string // leaf literal
	value       uint32
	paren       bool
}

// Generator produces random well-formed monitor expressions together with
// their value under 32-bit unsigned arithmetic.
type Generator struct {
	rng       *rand.Rand
	maxDepth  int
	maxTokens int
	spaces    bool
}

// NewGenerator creates a generator. The same seed always yields the same
// sequence.
func NewGenerator(seed uint64, maxDepth int) *Generator {
	return &Generator{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		maxDepth:  maxDepth,
		maxTokens: 32,
		spaces:    true,
	}
}

var genOps = []string{"+", "-", "*", "/", "+", "-", "*", "==", "!="}

func opWeight(op string) int {
	switch op {
	case "==", "!=":
		return 1
	case "+", "-":
		return 4
	case "*", "/":
		return 5
	}
	return 100
}

func apply(op string, a, b uint32) uint32 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "==":
		if a == b {
			return 1
		}
	case "!=":
		if a != b {
			return 1
		}
	}
	return 0
}

func (g *Generator) leaf() *exprNode {
	v := g.rng.Uint32()
	switch g.rng.IntN(3) {
	case 0:
		v %= 100
	case 1:
		v %= 0x10000
	}
	if g.rng.IntN(4) == 0 {
		return &exprNode{text: fmt.Sprintf("0x%x", v), value: v}
	}
	return &exprNode{text: fmt.Sprintf("%d", v), value: v}
}

func (g *Generator) build(depth int) *exprNode {
	if depth >= g.maxDepth || g.rng.IntN(3) == 0 {
		return g.leaf()
	}
	if g.rng.IntN(5) == 0 {
		n := g.build(depth + 1)
		n.paren = true
		return n
	}
	op := genOps[g.rng.IntN(len(genOps))]
	left := g.build(depth + 1)
	right := g.build(depth + 1)
	for tries := 0; op == "/" && right.value == 0; tries++ {
		if tries >= 8 {
			right = &exprNode{text: "1", value: 1}
			break
		}
		right = g.build(depth + 1)
	}
	return &exprNode{op: op, left: left, right: right, value: apply(op, left.value, right.value)}
}

func weightOf(n *exprNode) int {
	if n.op == "" || n.paren {
		return 100
	}
	return opWeight(n.op)
}

// render writes n, adding parentheses wherever the tree shape would not
// survive the evaluator's precedence and left associativity.
func (g *Generator) render(sb *strings.Builder, n *exprNode, tokens *int) {
	if n.paren {
		sb.WriteByte('(')
		*tokens++
		inner := *n
		inner.paren = false
		g.render(sb, &inner, tokens)
		sb.WriteByte(')')
		*tokens++
		return
	}
	if n.op == "" {
		sb.WriteString(n.text)
		*tokens++
		return
	}
	w := opWeight(n.op)
	g.child(sb, n.left, weightOf(n.left) < w, tokens)
	g.space(sb)
	sb.WriteString(n.op)
	*tokens++
	g.space(sb)
	g.child(sb, n.right, weightOf(n.right) <= w, tokens)
}

func (g *Generator) child(sb *strings.Builder, n *exprNode, wrap bool, tokens *int) {
	if !wrap {
		g.render(sb, n, tokens)
		return
	}
	sb.WriteByte('(')
	g.render(sb, n, tokens)
	sb.WriteByte(')')
	*tokens += 2
}

func (g *Generator) space(sb *strings.Builder) {
	if g.spaces && g.rng.IntN(2) == 0 {
		sb.WriteByte(' ')
	}
}

// Next returns one expression that fits the evaluator's token limit and
// its expected value.
func (g *Generator) Next() (string, uint32) {
	for {
		n := g.build(0)
		var sb strings.Builder
		tokens := 0
		g.render(&sb, n, &tokens)
		if tokens <= g.maxTokens {
			return sb.String(), n.value
		}
	}
}
