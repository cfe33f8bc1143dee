// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pluralexpr parses and evaluates gettext plural-forms expressions.

A plural expression is the right-hand side of the "plural=" field in a
catalog's Plural-Forms header, for example:

	n != 1
	n==1 ? 0 : n==0 ? 2 : 1
	n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2

The language is a small C-style expression language over the single integer
variable n: integer literals, parentheses, logical negation, the arithmetic
operators % * / + -, the comparisons == != < <= > >=, the logical operators
&& and ||, and the right-associative ternary operator ?:.

Expressions are parsed once into an AST and evaluated as plain integer
arithmetic; there is no general code execution facility involved. Use
[Cached] for repeated evaluation of the same source text.
*/
package pluralexpr
