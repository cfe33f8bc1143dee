// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/lokal/textdomain"
	"codeberg.org/lokal/textdomain/catalog"
	"codeberg.org/lokal/textdomain/langselect"
)

// newTestResolver wires a registry and resolver with a fixed "de" language
// preference, sidestepping the process environment.
func newTestResolver(t *testing.T, loader *stubLoader, opts ...textdomain.ResolverOption) (*textdomain.Registry, *textdomain.Resolver) {
	t.Helper()

	reg := textdomain.New(textdomain.WithLoader(loader))

	opts = append([]textdomain.ResolverOption{
		textdomain.WithProvider(langselect.Static{"de"}),
	}, opts...)

	res, err := textdomain.NewResolver(reg, opts...)
	require.NoError(t, err)

	return reg, res
}

// TestFallbackIdentity: with no matching catalog and a nil divider, the
// msgid comes back verbatim.
func TestFallbackIdentity(t *testing.T) {
	t.Parallel()

	_, res := newTestResolver(t, newStubLoader())

	assert.Equal(t, "Category|Item", res.TranslateWithDivider(widget{}, "Category|Item", ""))
}

// TestDividerTruncation: a missed lookup with a divider keeps only the
// trailing segment.
func TestDividerTruncation(t *testing.T) {
	t.Parallel()

	_, res := newTestResolver(t, newStubLoader())

	assert.Equal(t, "Item", res.Translate(widget{}, "Category|Item"))
	assert.Equal(t, "Item", res.TranslateWithDivider(widget{}, "Sub|Category|Item", "|"))
	assert.Equal(t, "no divider here", res.Translate(widget{}, "no divider here"))
}

// TestDividerFiresOnSelfTranslation documents the value-equality check: a
// genuine hit whose translation equals the msgid is truncated as if it had
// missed.
func TestDividerFiresOnSelfTranslation(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Menu|File", "Menu|File")
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	assert.Equal(t, "File", res.Translate(widget{}, "Menu|File"))
}

func TestSingularHit(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	assert.Equal(t, "Öffnen", res.Translate(widget{}, "Open"))
}

// TestHierarchyOrder: a subtype's catalog beats its embedded supertype's.
func TestHierarchyOrder(t *testing.T) {
	t.Parallel()

	super := newStubCatalog("super").addSingular("de", "Close", "Schließen (widget)")
	sub := newStubCatalog("sub").addSingular("de", "Close", "Schließen (button)")
	reg, res := newTestResolver(t, newStubLoader(super, sub))

	require.NoError(t, reg.Bind(widget{}, "super"))
	require.NoError(t, reg.Bind(button{}, "sub"))

	assert.Equal(t, "Schließen (button)", res.Translate(button{}, "Close"))

	// The supertype still sees only its own catalog.
	assert.Equal(t, "Schließen (widget)", res.Translate(widget{}, "Close"))
}

// TestHierarchyFallthrough: ids missing from the subtype's catalog resolve
// through the embedded supertype.
func TestHierarchyFallthrough(t *testing.T) {
	t.Parallel()

	super := newStubCatalog("super").addSingular("de", "Quit", "Beenden")
	sub := newStubCatalog("sub")
	reg, res := newTestResolver(t, newStubLoader(super, sub))

	require.NoError(t, reg.Bind(widget{}, "super"))
	require.NoError(t, reg.Bind(button{}, "sub"))

	assert.Equal(t, "Beenden", res.Translate(button{}, "Quit"))
}

// TestCatalogRecency: of two catalogs bound to one type, the most recently
// bound wins.
func TestCatalogRecency(t *testing.T) {
	t.Parallel()

	older := newStubCatalog("older").addSingular("de", "Save", "alt")
	newer := newStubCatalog("newer").addSingular("de", "Save", "neu")
	reg, res := newTestResolver(t, newStubLoader(older, newer))

	require.NoError(t, reg.Bind(widget{}, "older"))
	require.NoError(t, reg.Bind(widget{}, "newer"))

	assert.Equal(t, "neu", res.Translate(widget{}, "Save"))
}

// TestRestrictedTags: a type's restricted tag set narrows the candidate
// languages before the walk starts.
func TestRestrictedTags(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").
		addSingular("de", "Yes", "Ja").
		addSingular("fr", "Yes", "Oui")

	reg := textdomain.New(textdomain.WithLoader(newStubLoader(cat)))
	res, err := textdomain.NewResolver(reg,
		textdomain.WithProvider(langselect.Static{"de", "fr"}),
	)
	require.NoError(t, err)

	require.NoError(t, reg.Bind(widget{}, "app", textdomain.WithSupportedTags("fr")))

	assert.Equal(t, "Oui", res.Translate(widget{}, "Yes"))
}

// TestNoLanguageCandidate: an empty candidate list short-circuits to the
// fallback without consulting catalogs.
func TestNoLanguageCandidate(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg := textdomain.New(textdomain.WithLoader(newStubLoader(cat)))
	res, err := textdomain.NewResolver(reg,
		textdomain.WithProvider(langselect.Static{}),
	)
	require.NoError(t, err)

	require.NoError(t, reg.Bind(widget{}, "app"))

	assert.Equal(t, "Open", res.Translate(widget{}, "Open"))
	assert.Equal(t, 0, cat.SingularCalls())
}

// TestPluralRuleEvaluation mirrors gettext form selection with a catalog
// entry carrying the binary English rule.
func TestPluralRuleEvaluation(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "1 apple", catalog.PluralEntry{
		Forms: []string{"1 apple", "%{n} apples"},
		Rule:  "n != 1",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	for n, want := range map[int]string{
		0: "%{n} apples",
		1: "1 apple",
		2: "%{n} apples",
	} {
		got, err := res.TranslatePlural(widget{}, "1 apple", "%{n} apples", n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

// TestPluralThreeForms exercises an integer-valued rule with three
// categories.
func TestPluralThreeForms(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "apple", catalog.PluralEntry{
		Forms: []string{"jabłko", "jabłka", "jabłek"},
		Rule:  "n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	cases := map[int]string{1: "jabłko", 3: "jabłka", 5: "jabłek", 12: "jabłek"}
	for n, want := range cases {
		got, err := res.TranslatePlural(widget{}, "apple", "apples", n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

// TestPluralFallback: no catalog entry yields the msgid pair under the
// English-default rule.
func TestPluralFallback(t *testing.T) {
	t.Parallel()

	_, res := newTestResolver(t, newStubLoader())

	got, err := res.TranslatePlural(widget{}, "apple", "apples", 5)
	require.NoError(t, err)
	assert.Equal(t, "apples", got)

	got, err = res.TranslatePlural(widget{}, "apple", "apples", 1)
	require.NoError(t, err)
	assert.Equal(t, "apple", got)
}

// TestPluralFallbackDivider applies divider truncation to the singular
// fallback form only.
func TestPluralFallbackDivider(t *testing.T) {
	t.Parallel()

	_, res := newTestResolver(t, newStubLoader())

	got, err := res.TranslatePlural(widget{}, "Fruit|apple", "apples", 1)
	require.NoError(t, err)
	assert.Equal(t, "apple", got)

	got, err = res.TranslatePlural(widget{}, "Fruit|apple", "apples", 3)
	require.NoError(t, err)
	assert.Equal(t, "apples", got)
}

func TestPluralFormOutOfRange(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "apple", catalog.PluralEntry{
		Forms: []string{"Apfel", "Äpfel"},
		Rule:  "2",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	_, err := res.TranslatePlural(widget{}, "apple", "apples", 1)
	assert.ErrorIs(t, err, textdomain.ErrPluralFormOutOfRange)
}

func TestPluralInvalidRule(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "apple", catalog.PluralEntry{
		Forms: []string{"Apfel", "Äpfel"},
		Rule:  "n ===",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	_, err := res.TranslatePlural(widget{}, "apple", "apples", 1)
	assert.ErrorIs(t, err, textdomain.ErrInvalidPluralRule)
}

// TestPluralPairOverload covers the pair form and its argument-shape
// rejection: a numeric divider means the caller meant the four-argument
// form, and no catalog may be consulted.
func TestPluralPairOverload(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "apple", catalog.PluralEntry{
		Forms: []string{"Apfel", "Äpfel"},
		Rule:  "n != 1",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	got, err := res.TranslatePluralPair(widget{}, [2]string{"apple", "apples"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Äpfel", got)

	got, err = res.TranslatePluralPair(widget{}, [2]string{"Fruit|apple", "apples"}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "Fruit|apple", got, "nil divider disables truncation")

	_, err = res.TranslatePluralPair(widget{}, [2]string{"apple", "apples"}, 2, 7)
	assert.ErrorIs(t, err, textdomain.ErrInvalidArgument)

	_, err = res.TranslatePluralPair(widget{}, [2]string{"apple", "apples"}, 2, 1.5)
	assert.ErrorIs(t, err, textdomain.ErrInvalidArgument)

	assert.Equal(t, 2, cat.PluralCalls(), "rejected calls must not reach the catalog")
}

// TestCacheConsistency: with caching on, a repeated lookup answers from the
// memo without a second catalog query.
func TestCacheConsistency(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	assert.Equal(t, "Öffnen", res.Translate(widget{}, "Open"))
	assert.Equal(t, "Öffnen", res.Translate(widget{}, "Open"))

	assert.Equal(t, 1, cat.SingularCalls())
	assert.Equal(t, 1, res.CacheLen())
}

// TestCacheKeyIncludesDivider: the same msgid with different dividers must
// not share a cache slot.
func TestCacheKeyIncludesDivider(t *testing.T) {
	t.Parallel()

	_, res := newTestResolver(t, newStubLoader())

	assert.Equal(t, "Item", res.TranslateWithDivider(widget{}, "Category|Item", "|"))
	assert.Equal(t, "Category|Item", res.TranslateWithDivider(widget{}, "Category|Item", ""))
}

// TestCachingDisabled: every lookup reaches the catalog.
func TestCachingDisabled(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	loader := newStubLoader(cat)

	reg := textdomain.New(textdomain.WithLoader(loader), textdomain.WithCaching(false))
	res, err := textdomain.NewResolver(reg, textdomain.WithProvider(langselect.Static{"de"}))
	require.NoError(t, err)

	require.NoError(t, reg.Bind(widget{}, "app"))

	res.Translate(widget{}, "Open")
	res.Translate(widget{}, "Open")

	assert.Equal(t, 2, cat.SingularCalls())
	assert.Equal(t, 0, res.CacheLen())
}

// TestCachingToggleInvalidates: flipping the registry flag flushes warm
// results on the next lookup.
func TestCachingToggleInvalidates(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	res.Translate(widget{}, "Open")
	require.Equal(t, 1, res.CacheLen())

	reg.SetCachingEnabled(false)
	res.Translate(widget{}, "Open")

	reg.SetCachingEnabled(true)
	res.Translate(widget{}, "Open")

	// The warm entry from before the toggle is gone; the catalog was asked
	// again after re-enabling.
	assert.Equal(t, 3, cat.SingularCalls())
	assert.Equal(t, 1, res.CacheLen())
}

// TestDebugDisablesCaching: debug mode suppresses memoization regardless of
// the registry flag.
func TestDebugDisablesCaching(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg, res := newTestResolver(t, newStubLoader(cat), textdomain.WithDebug(true))
	require.NoError(t, reg.Bind(widget{}, "app"))

	res.Translate(widget{}, "Open")
	res.Translate(widget{}, "Open")

	assert.Equal(t, 2, cat.SingularCalls())
	assert.Equal(t, 0, res.CacheLen())
}

// TestFlushCache empties the memo on demand, e.g. after late binds.
func TestFlushCache(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addSingular("de", "Open", "Öffnen")
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	res.Translate(widget{}, "Open")
	require.Equal(t, 1, res.CacheLen())

	res.FlushCache()
	assert.Equal(t, 0, res.CacheLen())
}

// TestPluralCaching: plural results are memoized per count.
func TestPluralCaching(t *testing.T) {
	t.Parallel()

	cat := newStubCatalog("app").addPlural("de", "apple", catalog.PluralEntry{
		Forms: []string{"Apfel", "Äpfel"},
		Rule:  "n != 1",
	})
	reg, res := newTestResolver(t, newStubLoader(cat))
	require.NoError(t, reg.Bind(widget{}, "app"))

	for i := 0; i < 2; i++ {
		got, err := res.TranslatePlural(widget{}, "apple", "apples", 2)
		require.NoError(t, err)
		assert.Equal(t, "Äpfel", got)
	}

	assert.Equal(t, 1, cat.PluralCalls())

	// A different count is a different cache entry.
	got, err := res.TranslatePlural(widget{}, "apple", "apples", 1)
	require.NoError(t, err)
	assert.Equal(t, "Apfel", got)
	assert.Equal(t, 2, cat.PluralCalls())
}
