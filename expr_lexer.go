// expr_lexer.go - Expression tokenizer and dereference classifier

package main

import (
	"errors"
	"fmt"
)

const (
	maxTokens    = 32
	maxTokenText = 31
)

var (
	ErrNoMatch       = errors.New("no rule matches")
	ErrTokenTooLong  = errors.New("token too long")
	ErrTooManyTokens = errors.New("too many tokens")
)

// LexError reports where tokenization stopped.
type LexError struct {
	Err  error
	Pos  int
	Expr string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%v at position %d", e.Err, e.Pos)
}

func (e *LexError) Unwrap() error { return e.Err }

// Caret renders the expression with a marker under the failing column.
func (e *LexError) Caret() string {
	return fmt.Sprintf("%s\n%*s^", e.Expr, e.Pos, "")
}

// Token is one lexeme. Text is only set for dec, hex and register tokens.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) String() string {
	if t.Kind.hasText() {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
	return t.Kind.String()
}

// Source renders the token the way it appears in an expression.
func (t Token) Source() string {
	switch {
	case t.Kind.hasText():
		return t.Text
	case t.Kind == TokDeref:
		return "*"
	}
	return t.Kind.String()
}

// tokenBuffer is scratch space for one tokenize/evaluate pass. It lives on
// the caller's stack so concurrent evaluations never share it.
type tokenBuffer struct {
	toks [maxTokens]Token
	n    int
}

func (b *tokenBuffer) reset() { b.n = 0 }

// Tokens returns the filled part of the buffer.
func (b *tokenBuffer) Tokens() []Token { return b.toks[:b.n] }

func (b *tokenBuffer) push(t Token) bool {
	if b.n >= maxTokens {
		return false
	}
	b.toks[b.n] = t
	b.n++
	return true
}

// tokenize splits expr into buf. On error buf is left empty.
func tokenize(expr string, buf *tokenBuffer) error {
	buf.reset()
	pos := 0
	for pos < len(expr) {
		rule, n, ok := matchRule(expr[pos:])
		if !ok {
			buf.reset()
			return &LexError{Err: ErrNoMatch, Pos: pos, Expr: expr}
		}
		start := pos
		pos += n

		if rule.kind == TokNone {
			continue
		}
		tok := Token{Kind: rule.kind}
		if rule.kind.hasText() {
			if n > maxTokenText {
				buf.reset()
				return &LexError{Err: ErrTokenTooLong, Pos: start, Expr: expr}
			}
			tok.Text = expr[start:pos]
		}
		if !buf.push(tok) {
			buf.reset()
			return &LexError{Err: ErrTooManyTokens, Pos: start, Expr: expr}
		}
	}
	return nil
}

// markDereferences rewrites every '*' that sits in prefix position into a
// dereference. Runs left to right so "**p" becomes two dereferences.
func markDereferences(buf *tokenBuffer) {
	toks := buf.Tokens()
	for i := range toks {
		if toks[i].Kind != TokMultiply {
			continue
		}
		if i == 0 || isPrefixContext(toks[i-1].Kind) {
			toks[i].Kind = TokDeref
		}
	}
}

func isPrefixContext(prev TokenKind) bool {
	switch prev {
	case TokPlus, TokMinus, TokMultiply, TokDivide, TokLParen,
		TokEqual, TokNotEqual, TokAnd, TokDeref:
		return true
	}
	return false
}

// Tokenize lexes and classifies expr, returning a copy of the tokens.
func Tokenize(expr string) ([]Token, error) {
	var buf tokenBuffer
	if err := tokenize(expr, &buf); err != nil {
		return nil, err
	}
	markDereferences(&buf)
	return append([]Token(nil), buf.Tokens()...), nil
}
