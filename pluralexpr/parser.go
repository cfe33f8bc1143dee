// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pluralexpr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	parser = participle.MustBuild[ternary](
		participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
			{Name: `Int`, Pattern: `\d+`},
			{Name: `Ident`, Pattern: `[a-zA-Z_]\w*`},
			{Name: `Operator`, Pattern: `\|\||&&|==|!=|<=|>=|[%*/+\-<>?:()!]`},
			{Name: `whitespace`, Pattern: `\s+`},
		})),
	)

	// compiled caches rules per unique source text. Catalogs repeat the same
	// handful of Plural-Forms headers, so this stays tiny.
	compiled sync.Map // key: source, value: *Rule
)

// Grammar nodes, in decreasing binding order: primary, unary, multiplicative,
// additive, comparison, &&, ||, ?:. Mirrors C operator precedence, which is
// what gettext catalogs are written against.

type ternary struct {
	Cond *orExpr  `parser:"@@"`
	Then *ternary `parser:"( '?' @@"`
	Else *ternary `parser:"  ':' @@ )?"`
}

type orExpr struct {
	Left  *andExpr   `parser:"@@"`
	Right []*andExpr `parser:"( '||' @@ )*"`
}

type andExpr struct {
	Left  *cmpExpr   `parser:"@@"`
	Right []*cmpExpr `parser:"( '&&' @@ )*"`
}

type cmpExpr struct {
	Left  *addExpr `parser:"@@"`
	Op    string   `parser:"( @('==' | '!=' | '<=' | '>=' | '<' | '>')"`
	Right *addExpr `parser:"@@ )?"`
}

type addExpr struct {
	Left *mulExpr  `parser:"@@"`
	Rest []*addOp  `parser:"@@*"`
}

type addOp struct {
	Op   string   `parser:"@('+' | '-')"`
	Term *mulExpr `parser:"@@"`
}

type mulExpr struct {
	Left *unary   `parser:"@@"`
	Rest []*mulOp `parser:"@@*"`
}

type mulOp struct {
	Op   string `parser:"@('%' | '*' | '/')"`
	Term *unary `parser:"@@"`
}

type unary struct {
	Not     *unary   `parser:"'!' @@"`
	Primary *primary `parser:"| @@"`
}

type primary struct {
	N   bool     `parser:"@'n'"`
	Num *int64   `parser:"| @Int"`
	Sub *ternary `parser:"| '(' @@ ')'"`
}

// Rule is a compiled plural expression, safe for concurrent evaluation.
type Rule struct {
	src  string
	root *ternary
}

// Compile parses src into an evaluatable Rule.
func Compile(src string) (*Rule, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(src), ";"))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	root, err := parser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}

	return &Rule{src: src, root: root}, nil
}

// MustCompile is like [Compile] but panics on error. Intended for expressions
// known at build time, such as the English-default "n != 1".
func MustCompile(src string) *Rule {
	r, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return r
}

// Cached returns a compiled Rule for src, reusing a previous compilation of
// the same source text when one exists.
func Cached(src string) (*Rule, error) {
	if r, ok := compiled.Load(src); ok {
		return r.(*Rule), nil
	}

	r, err := Compile(src)
	if err != nil {
		return nil, err
	}

	actual, _ := compiled.LoadOrStore(src, r)

	return actual.(*Rule), nil
}

// Source returns the original expression text the rule was compiled from.
func (r *Rule) Source() string {
	return r.src
}
