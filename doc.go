// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package textdomain resolves message ids to localized strings through text
domains bound to Go types.

A text domain is a named GNU gettext catalog. Domains are registered once
per name in a [Registry] and bound to any number of types; a [Resolver]
then translates a message id for a value by searching the catalogs of the
value's type and of its related types, in order from most specific to least.

# Quick start

	reg := textdomain.New()

	err := reg.Bind(ui.Window{}, "myapp",
		textdomain.WithPath("/usr/share/locale"),
	)
	if err != nil {
		// catalog files could not be loaded
	}

	res, _ := textdomain.NewResolver(reg)

	label := res.Translate(window, "File|Open")
	status, err := res.TranslatePlural(window, "One match", "Several matches", n)

# Search order

For a lookup against a value of type T, the resolver consults, in order: T
itself, the types T embeds (breadth-first), and any bound interface types T
satisfies, skipping types with no binding. Within one type, catalogs are
consulted most recently bound first. The first translation found wins.

# Fallback and dividers

A missing translation is never an error. The msgid itself is the fallback,
optionally shortened to the part after the last divider ("File|Open" becomes
"Open") so message ids can carry disambiguating prefixes that are never
shown to users.

# Language selection

The language for a lookup comes from a [langselect.Provider], by default
the GNU gettext environment variables, narrowed by the restricted tag set
of the bound type, if one was supplied with [WithSupportedTags].

# Caching

Resolved messages are memoized in a bounded LRU keyed by language, type,
message id and divider. The registry-wide caching flag and the output
charset are observed across resolvers; binding a domain after lookups have
warmed the cache does not invalidate it; call [Resolver.FlushCache] when
late binding matters.
*/
package textdomain
