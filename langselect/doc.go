// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package langselect ranks candidate language tags for translation lookups.

A [Provider] turns caller preferences into an ordered list of POSIX-form
tags ("en_US", "pt_BR"), most preferred first, optionally narrowed against
a restricted set of supported tags using [golang.org/x/text/language]
matching.

Two providers are included. [Env] reads the GNU gettext environment
variables (LANGUAGE, LC_ALL, LC_MESSAGES, LANG, in that precedence) and is
the default for command-line processes. [Static] carries a fixed preference
list and suits servers and tests, where the language is decided per
configuration or per request rather than per process environment.
*/
package langselect
