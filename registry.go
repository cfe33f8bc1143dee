// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain

import (
	"fmt"
	"sync"
	"sync/atomic"

	"codeberg.org/lokal/textdomain/catalog"
	"codeberg.org/lokal/textdomain/hierarchy"
)

// Registry holds the process state shared by resolvers: the domain table,
// the type bindings and the global output-charset and caching settings.
//
// A Registry is an explicit object rather than package-level state so that
// tests and multi-tenant processes can hold independent registries. It is
// safe for concurrent use; binding is expected to happen during startup and
// to be rare relative to lookups.
type Registry struct {
	mu sync.RWMutex

	loader        catalog.Loader
	outputCharset string

	// domains maps a domain name to its one Catalog. The mapping is a
	// bijection: rebinding a name never creates a second Catalog.
	domains map[string]catalog.Catalog

	// bindings maps a normalized type key to its bound catalogs and
	// optional restricted language-tag set.
	bindings map[hierarchy.Key]*binding

	// bound lists every type that ever received a binding, most recently
	// bound first. The hierarchy resolver walks it to find search targets.
	bound []hierarchy.Key

	caching atomic.Bool

	// generation is bumped by mutations that invalidate resolver caches:
	// charset pushes and caching toggles. Plain binds deliberately do not
	// bump it; a warm cache is not flushed by late bindings.
	generation atomic.Uint64
}

// binding relates one type to its catalogs and restricted tag set.
type binding struct {
	catalogs []catalog.Catalog // most recently bound first
	tags     []string          // nil when unrestricted
	tagsSet  bool
}

// Option configures a Registry during construction.
type Option func(*Registry)

// WithLoader replaces the catalog loader. The default is
// [catalog.GettextLoader].
func WithLoader(l catalog.Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithOutputCharset sets the process-wide default output charset applied to
// catalogs bound without an explicit charset.
func WithOutputCharset(charset string) Option {
	return func(r *Registry) { r.outputCharset = charset }
}

// WithCaching sets the initial state of the caching flag. Caching defaults
// to enabled.
func WithCaching(enabled bool) Option {
	return func(r *Registry) { r.caching.Store(enabled) }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		loader:   catalog.GettextLoader{},
		domains:  map[string]catalog.Catalog{},
		bindings: map[hierarchy.Key]*binding{},
	}
	r.caching.Store(true)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// BindOption configures a single bind call.
type BindOption func(*bindOptions)

type bindOptions struct {
	path       string
	charset    string
	hasCharset bool
	tags       []string
	tagsSet    bool
}

// WithPath sets the directory the domain's catalog files are loaded from.
// Only the first bind of a domain name consults it.
func WithPath(path string) BindOption {
	return func(o *bindOptions) { o.path = path }
}

// WithCharset sets the output charset for the domain's catalog, overriding
// the registry default. Only the first bind of a domain name consults it.
func WithCharset(charset string) BindOption {
	return func(o *bindOptions) {
		o.charset = charset
		o.hasCharset = true
	}
}

// WithSupportedTags restricts the language tags considered when resolving
// translations for the bound type. Across repeated binds of the same type,
// the last bind that supplies tags wins; binds without this option leave the
// previous restriction in place.
func WithSupportedTags(tags ...string) BindOption {
	return func(o *bindOptions) {
		o.tags = append([]string(nil), tags...)
		o.tagsSet = true
	}
}

// BindDomain registers a text domain and eagerly loads its catalog.
//
// Binding is idempotent per name: if the domain already exists its Catalog
// is returned unchanged and any path or charset options are ignored. On a
// load failure nothing is registered and the error is returned wrapped.
func (r *Registry) BindDomain(name string, opts ...BindOption) (catalog.Catalog, error) {
	o := applyBindOptions(opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bindDomainLocked(name, o)
}

func (r *Registry) bindDomainLocked(name string, o *bindOptions) (catalog.Catalog, error) {
	if existing, ok := r.domains[name]; ok {
		return existing, nil
	}

	charset := r.outputCharset
	if o.hasCharset {
		charset = o.charset
	}

	cat, err := r.loader.Open(name, o.path, charset)
	if err != nil {
		return nil, fmt.Errorf("failed to bind domain %q: %w", name, err)
	}

	r.domains[name] = cat

	Logger.Debug().
		Str("domain", name).
		Str("path", o.path).
		Msg("Bound text domain")

	return cat, nil
}

// Bind binds a text domain to a type.
//
// target is normalized with [hierarchy.Normalize], so a value, a pointer to
// it and its reflect.Type all address the same binding. The domain's catalog
// is placed at the head of the type's catalog list; rebinding an already
// bound catalog keeps the existing order. A supported-tags option overwrites
// the type's restricted tag set; its absence leaves the set untouched.
func (r *Registry) Bind(target any, domainName string, opts ...BindOption) error {
	key := hierarchy.Normalize(target)
	if key == nil {
		return fmt.Errorf("%w: nil bind target", ErrInvalidArgument)
	}

	o := applyBindOptions(opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.bindDomainLocked(domainName, o)
	if err != nil {
		return err
	}

	b, ok := r.bindings[key]
	if !ok {
		b = &binding{}
		r.bindings[key] = b
		r.bound = append([]hierarchy.Key{key}, r.bound...)
	}

	if !containsCatalog(b.catalogs, cat) {
		b.catalogs = append([]catalog.Catalog{cat}, b.catalogs...)
	}

	if o.tagsSet {
		b.tags = o.tags
		b.tagsSet = true
	}

	return nil
}

// Domain returns the catalog registered under name, if any.
func (r *Registry) Domain(name string) (catalog.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cat, ok := r.domains[name]

	return cat, ok
}

// CatalogsFor returns the catalogs bound to exactly the target's type, most
// recently bound first. No hierarchy walk is performed.
func (r *Registry) CatalogsFor(target any) []catalog.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.catalogsForKey(hierarchy.Normalize(target))
}

func (r *Registry) catalogsForKey(key hierarchy.Key) []catalog.Catalog {
	b, ok := r.bindings[key]
	if !ok {
		return nil
	}

	return append([]catalog.Catalog(nil), b.catalogs...)
}

// TagsFor returns the restricted language-tag set for the target's type.
// The second result reports whether a restriction was ever supplied.
func (r *Registry) TagsFor(target any) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tagsForKey(hierarchy.Normalize(target))
}

func (r *Registry) tagsForKey(key hierarchy.Key) ([]string, bool) {
	b, ok := r.bindings[key]
	if !ok || !b.tagsSet {
		return nil, false
	}

	return append([]string(nil), b.tags...), true
}

// BoundTypes returns every type that has a binding, most recently bound
// first.
func (r *Registry) BoundTypes() []hierarchy.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]hierarchy.Key(nil), r.bound...)
}

// SetOutputCharset changes the process-wide output charset and pushes it
// onto every existing catalog. Resolver caches observe the change on their
// next lookup.
func (r *Registry) SetOutputCharset(charset string) {
	r.mu.Lock()
	r.outputCharset = charset

	for _, cat := range r.domains {
		cat.SetCharset(charset)
	}
	r.mu.Unlock()

	r.generation.Add(1)
}

// SetCachingEnabled toggles result memoization for all resolvers sharing
// this registry. Toggling invalidates memoized results.
func (r *Registry) SetCachingEnabled(enabled bool) {
	r.caching.Store(enabled)
	r.generation.Add(1)
}

// CachingEnabled reports the current state of the caching flag.
func (r *Registry) CachingEnabled() bool {
	return r.caching.Load()
}

func (r *Registry) cacheGeneration() uint64 {
	return r.generation.Load()
}

func applyBindOptions(opts []BindOption) *bindOptions {
	o := &bindOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

func containsCatalog(catalogs []catalog.Catalog, cat catalog.Catalog) bool {
	for _, c := range catalogs {
		if c == cat {
			return true
		}
	}

	return false
}
