// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"codeberg.org/lokal/textdomain/catalog"
	"codeberg.org/lokal/textdomain/hierarchy"
	"codeberg.org/lokal/textdomain/langselect"
	"codeberg.org/lokal/textdomain/lrucache"
	"codeberg.org/lokal/textdomain/pluralexpr"
)

// DefaultDivider is the separator used to shorten untranslated message ids
// to their trailing segment, gettext's sgettext convention.
const DefaultDivider = "|"

// DefaultCacheSize is the memoization capacity used when no explicit size
// is configured.
const DefaultCacheSize = 4096

// cacheSep joins cache-key fields. Message ids are free text, so the field
// separator must be a byte they never contain; EOT matches gettext's own
// context separator.
const cacheSep = "\x04"

// Resolver translates message ids for values whose types are bound in a
// [Registry]. It walks the type hierarchy most specific first, consults each
// type's catalogs most recently bound first, and memoizes results in a
// bounded LRU when caching is effective.
//
// Resolvers are safe for concurrent use and cheap enough to share; several
// resolvers may reference one registry.
type Resolver struct {
	reg      *Registry
	provider langselect.Provider
	related  hierarchy.Resolver
	debug    bool

	cache   *lrucache.LRUCache
	seenGen atomic.Uint64

	// missingOnce deduplicates debug-mode WARN logs for missing msgids.
	missingOnce sync.Map
}

// ResolverOption configures a Resolver during construction.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	provider  langselect.Provider
	related   hierarchy.Resolver
	debug     bool
	cacheSize int
	compress  bool
}

// WithProvider replaces the language-candidate provider. The default is
// [langselect.Env].
func WithProvider(p langselect.Provider) ResolverOption {
	return func(o *resolverOptions) { o.provider = p }
}

// WithHierarchyResolver replaces the related-type computation. The default
// is [hierarchy.RelatedTypes].
func WithHierarchyResolver(h hierarchy.Resolver) ResolverOption {
	return func(o *resolverOptions) { o.related = h }
}

// WithDebug enables debug mode: memoization is suppressed regardless of the
// registry flag and missing translations are logged once per language and
// message id.
func WithDebug(debug bool) ResolverOption {
	return func(o *resolverOptions) { o.debug = debug }
}

// WithCacheSize sets the memoization capacity.
func WithCacheSize(size int) ResolverOption {
	return func(o *resolverOptions) { o.cacheSize = size }
}

// WithCacheCompression stores long memoized values zstd-compressed.
func WithCacheCompression(compress bool) ResolverOption {
	return func(o *resolverOptions) { o.compress = compress }
}

// NewResolver creates a Resolver over reg.
func NewResolver(reg *Registry, opts ...ResolverOption) (*Resolver, error) {
	o := &resolverOptions{
		provider:  langselect.Env{},
		related:   hierarchy.RelatedTypes,
		cacheSize: DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(o)
	}

	cache, err := lrucache.New(o.cacheSize, o.compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver cache: %w", err)
	}

	res := &Resolver{
		reg:      reg,
		provider: o.provider,
		related:  o.related,
		debug:    o.debug,
		cache:    cache,
	}
	res.seenGen.Store(reg.cacheGeneration())

	return res, nil
}

// Translate resolves msgid for target's type using [DefaultDivider].
func (res *Resolver) Translate(target any, msgid string) string {
	return res.TranslateWithDivider(target, msgid, DefaultDivider)
}

// TranslateWithDivider resolves msgid for target's type.
//
// The search order is: each related type of target, most specific first; for
// each type, its bound catalogs, most recently bound first. The first
// translation found wins. On a total miss the msgid itself is returned,
// shortened to everything after the last divider when the divider is
// non-empty and the result still equals the msgid. An empty divider disables
// truncation.
//
// The truncation check is value equality, not a hit flag: a genuine
// translation that maps a msgid to itself is truncated too. That matches
// gettext's sgettext behavior and callers rely on it.
func (res *Resolver) TranslateWithDivider(target any, msgid, divider string) string {
	key := hierarchy.Normalize(target)
	lang := res.language(key)

	caching := res.cachingEffective()

	var ck string
	if caching {
		ck = singularCacheKey(lang, key, msgid, divider)
		if v, ok := res.cache.Get(ck); ok {
			return v
		}
	}

	msg, found := res.resolveSingular(key, lang, msgid)
	if !found {
		res.logMissing(lang, msgid)
	}

	msg = applyDivider(msg, msgid, divider)

	if caching {
		res.cache.Add(ck, msg)
	}

	return msg
}

// TranslatePlural resolves the msgid/msgidPlural pair for count n using
// [DefaultDivider].
func (res *Resolver) TranslatePlural(target any, msgid, msgidPlural string, n int) (string, error) {
	return res.TranslatePluralWithDivider(target, msgid, msgidPlural, n, DefaultDivider)
}

// TranslatePluralWithDivider resolves the msgid/msgidPlural pair for count n.
//
// The hierarchy walk matches [Resolver.TranslateWithDivider]. When no
// catalog carries a plural entry, the forms fall back to the pair itself
// under the English-default rule "n != 1". The divider truncation applies to
// the singular form only, under the same equality condition as the singular
// path. The catalog's plural rule is evaluated against n to select a form;
// an index beyond the available forms is [ErrPluralFormOutOfRange].
func (res *Resolver) TranslatePluralWithDivider(
	target any,
	msgid, msgidPlural string,
	n int,
	divider string,
) (string, error) {
	key := hierarchy.Normalize(target)
	lang := res.language(key)

	caching := res.cachingEffective()

	var ck string
	if caching {
		ck = pluralCacheKey(lang, key, msgid, msgidPlural, n, divider)
		if v, ok := res.cache.Get(ck); ok {
			return v, nil
		}
	}

	entry, found := res.resolvePlural(key, lang, msgid, msgidPlural)
	if !found {
		res.logMissing(lang, msgid)

		entry = catalog.PluralEntry{
			Forms: []string{msgid, msgidPlural},
			Rule:  catalog.DefaultPluralRule,
		}
	}

	rule, err := pluralexpr.Cached(entry.Rule)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPluralRule, err)
	}

	index, err := rule.Evaluate(n)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPluralRule, err)
	}

	if index < 0 || index >= len(entry.Forms) {
		return "", fmt.Errorf("%w: rule %q selected form %d of %d",
			ErrPluralFormOutOfRange, entry.Rule, index, len(entry.Forms))
	}

	selected := entry.Forms[index]
	if index == 0 {
		selected = applyDivider(selected, msgid, divider)
	}

	if caching {
		res.cache.Add(ck, selected)
	}

	return selected, nil
}

// TranslatePluralPair is the pair-form overload of plural translation,
// accepting the singular and plural ids as one array.
//
// divider takes at most one value: a string, or nil to disable truncation;
// omitting it uses [DefaultDivider]. A numeric divider argument means the
// caller confused this form with the four-argument one and is rejected with
// [ErrInvalidArgument] before any lookup.
func (res *Resolver) TranslatePluralPair(
	target any,
	pair [2]string,
	n int,
	divider ...any,
) (string, error) {
	div := DefaultDivider

	if len(divider) > 0 {
		if len(divider) > 1 {
			return "", fmt.Errorf("%w: at most one divider argument", ErrInvalidArgument)
		}

		switch d := divider[0].(type) {
		case nil:
			div = ""
		case string:
			div = d
		default:
			if isNumeric(d) {
				return "", fmt.Errorf("%w: numeric divider %v; use the four-argument form for counts", ErrInvalidArgument, d)
			}

			return "", fmt.Errorf("%w: divider must be a string or nil", ErrInvalidArgument)
		}
	}

	return res.TranslatePluralWithDivider(target, pair[0], pair[1], n, div)
}

// FlushCache drops every memoized result.
func (res *Resolver) FlushCache() {
	res.cache.Purge()
}

// CacheLen returns the number of memoized results. It exists so cache
// population stays observable in tests.
func (res *Resolver) CacheLen() int {
	return res.cache.Len()
}

// language picks the highest-priority language candidate for a type,
// honouring its restricted tag set. Empty means no candidate: every lookup
// will miss and the fallback path applies.
func (res *Resolver) language(key hierarchy.Key) string {
	var restricted []string
	if tags, ok := res.reg.TagsFor(key); ok {
		restricted = tags
	}

	candidates := res.provider.Candidates(restricted)
	if len(candidates) == 0 {
		return ""
	}

	return candidates[0]
}

// resolveSingular walks related types and their catalogs; the first
// translation wins.
func (res *Resolver) resolveSingular(key hierarchy.Key, lang, msgid string) (string, bool) {
	if lang == "" {
		return msgid, false
	}

	for _, t := range res.related(key, res.reg.BoundTypes()) {
		for _, cat := range res.reg.CatalogsFor(t) {
			if msg, ok := cat.LookupSingular(lang, msgid); ok {
				return msg, true
			}
		}
	}

	return msgid, false
}

func (res *Resolver) resolvePlural(key hierarchy.Key, lang, msgid, msgidPlural string) (catalog.PluralEntry, bool) {
	if lang == "" {
		return catalog.PluralEntry{}, false
	}

	for _, t := range res.related(key, res.reg.BoundTypes()) {
		for _, cat := range res.reg.CatalogsFor(t) {
			if entry, ok := cat.LookupPlural(lang, msgid, msgidPlural); ok {
				return entry, true
			}
		}
	}

	return catalog.PluralEntry{}, false
}

// cachingEffective reports whether memoization applies to this lookup and
// flushes the cache when the registry's cache generation moved (charset
// pushes, caching toggles). Late binds do not move the generation; a warm
// cache may keep pre-bind results, which is the documented trade-off.
func (res *Resolver) cachingEffective() bool {
	if res.debug {
		return false
	}

	gen := res.reg.cacheGeneration()
	if res.seenGen.Swap(gen) != gen {
		res.cache.Purge()
	}

	return res.reg.CachingEnabled()
}

// logMissing logs a missing translation once per (lang, msgid) pair in
// debug mode.
func (res *Resolver) logMissing(lang, msgid string) {
	if !res.debug {
		return
	}

	id := lang + cacheSep + msgid
	if _, loaded := res.missingOnce.LoadOrStore(id, struct{}{}); !loaded {
		Logger.Warn().
			Str("lang", lang).
			Str("msgid", msgid).
			Msg("Missing translation")
	}
}

// applyDivider shortens msg to the segment after the last divider when the
// translation missed (or translated to itself) and a divider is set.
func applyDivider(msg, msgid, divider string) string {
	if divider == "" || msg != msgid {
		return msg
	}

	if i := strings.LastIndex(msgid, divider); i >= 0 {
		return msgid[i+len(divider):]
	}

	return msg
}

func singularCacheKey(lang string, key hierarchy.Key, msgid, divider string) string {
	return strings.Join([]string{"s", lang, hierarchy.KeyString(key), msgid, divider}, cacheSep)
}

func pluralCacheKey(lang string, key hierarchy.Key, msgid, msgidPlural string, n int, divider string) string {
	return strings.Join([]string{
		"p", lang, hierarchy.KeyString(key), msgid, msgidPlural, strconv.Itoa(n), divider,
	}, cacheSep)
}

// isNumeric reports whether v is any built-in numeric type.
func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return true
	}

	return false
}
