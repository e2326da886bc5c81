// expr_rules.go - Ordered lexer rule table for monitor expressions

package main

import "regexp"

// TokenKind identifies the lexical class of an expression token.
type TokenKind int

const (
	TokNone TokenKind = iota // whitespace, never stored
	TokEqual
	TokNotEqual
	TokAnd
	TokDec
	TokHex
	TokPlus
	TokMinus
	TokMultiply
	TokDivide
	TokLParen
	TokRParen
	TokRegister
	TokDeref // assigned by markDereferences, never by a rule
)

var tokenKindNames = [...]string{
	TokNone:     "none",
	TokEqual:    "==",
	TokNotEqual: "!=",
	TokAnd:      "&&",
	TokDec:      "dec",
	TokHex:      "hex",
	TokPlus:     "+",
	TokMinus:    "-",
	TokMultiply: "*",
	TokDivide:   "/",
	TokLParen:   "(",
	TokRParen:   ")",
	TokRegister: "reg",
	TokDeref:    "deref",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "?"
}

// hasText reports whether tokens of this kind carry their matched text.
func (k TokenKind) hasText() bool {
	return k == TokDec || k == TokHex || k == TokRegister
}

type exprRule struct {
	pattern string
	kind    TokenKind
	re      *regexp.Regexp
}

// exprRules is tried top to bottom at every scan position and the first
// anchored match wins. Hex must stay ahead of dec or "0x10" lexes as "0".
var exprRules = compileRules([]exprRule{
	{pattern: ` +`, kind: TokNone},
	{pattern: `\+`, kind: TokPlus},
	{pattern: `-`, kind: TokMinus},
	{pattern: `\*`, kind: TokMultiply},
	{pattern: `/`, kind: TokDivide},
	{pattern: `\(`, kind: TokLParen},
	{pattern: `\)`, kind: TokRParen},
	{pattern: `0[xX][0-9a-fA-F]+`, kind: TokHex},
	{pattern: `[0-9]+`, kind: TokDec},
	{pattern: `\$[a-zA-Z0-9]+`, kind: TokRegister},
	{pattern: `==`, kind: TokEqual},
	{pattern: `!=`, kind: TokNotEqual},
	{pattern: `&&`, kind: TokAnd},
})

// compileRules anchors every pattern at the start of the remaining input.
// Leftmost-longest matching mirrors POSIX extended regex semantics within a
// single rule; across rules, table order decides.
func compileRules(rules []exprRule) []exprRule {
	for i := range rules {
		re := regexp.MustCompile(`\A(?:` + rules[i].pattern + `)`)
		re.Longest()
		rules[i].re = re
	}
	return rules
}

// matchRule returns the first rule matching at the start of s and the
// length of the match, or ok=false.
func matchRule(s string) (rule *exprRule, n int, ok bool) {
	for i := range exprRules {
		loc := exprRules[i].re.FindStringIndex(s)
		if loc != nil && loc[0] == 0 && loc[1] > 0 {
			return &exprRules[i], loc[1], true
		}
	}
	return nil, 0, false
}
