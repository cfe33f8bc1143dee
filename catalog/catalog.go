// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the logger used by package catalog.
var Logger zerolog.Logger = log.With().Str("sys", "catalog").Logger()

// DefaultPluralRule is the plural-rule expression assumed when a catalog
// carries no Plural-Forms header: the English/Germanic binary rule.
const DefaultPluralRule = "n != 1"

// PluralEntry is the result of a plural lookup: the ordered translated
// forms and the plural-rule expression that selects among them.
type PluralEntry struct {
	Forms []string
	Rule  string
}

// Catalog is a named collection of message translations for one or more
// languages. Implementations must be safe for concurrent lookups.
//
// Languages are identified by POSIX-form tags ("en_US"). A false second
// result means the catalog has no translation for the id; misses are an
// expected outcome, never an error.
type Catalog interface {
	// Name returns the domain name the catalog was bound under.
	Name() string

	// LookupSingular returns the translation for msgid in lang.
	LookupSingular(lang, msgid string) (string, bool)

	// LookupPlural returns all translated forms for the msgid/msgidPlural
	// pair in lang, along with the catalog's plural-rule expression.
	LookupPlural(lang, msgid, msgidPlural string) (PluralEntry, bool)

	// SetCharset changes the output charset for subsequent lookups.
	// An empty charset means UTF-8 passthrough.
	SetCharset(charset string)
}

// Loader opens a catalog for a domain. Loading happens once, at bind time;
// failures propagate to the binder and are never absorbed here.
type Loader interface {
	Open(name, path, charset string) (Catalog, error)
}
