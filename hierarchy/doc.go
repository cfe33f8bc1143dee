// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package hierarchy computes the ordered set of types consulted when resolving
a translation for a value.

Go has no class hierarchy, so type relationships are derived from the two
mechanisms the language does have: struct embedding and interface
satisfaction. For a struct type, the related types are the type itself,
followed by its embedded types in breadth-first declaration order, followed
by any known interface types the type (or a pointer to it) implements.

The search is always restricted to a caller-supplied set of known types;
unknown ancestors are skipped rather than reported. [Normalize] collapses a
value, a pointer to it and its [reflect.Type] to one canonical [Key], so
binding through any of those forms targets the same entry.
*/
package hierarchy
