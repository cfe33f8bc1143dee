// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog defines the message-catalog contract consumed by the
resolver and provides a GNU gettext implementation backed by
github.com/leonelquinteros/gotext.

A [Catalog] answers per-language lookups for singular message ids and for
singular/plural pairs. Plural lookups return the full ordered list of
translated forms together with the catalog's plural-rule expression (the
"plural=" field of its Plural-Forms header); selecting a form is the
resolver's job, not the catalog's.

[GettextLoader] loads .po and .mo files eagerly when a domain is bound.
Both the flat layout used for bundled translations

	<path>/<locale>.po

and the standard GNU layout

	<path>/<locale>/LC_MESSAGES/<domain>.po

are recognised. Locale names may use hyphens or underscores and are
normalised to POSIX form ("pt_BR") for matching.

Translations are stored as UTF-8 and converted to a catalog's configured
output charset, if any, when results are returned.
*/
package catalog
