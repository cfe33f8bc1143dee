// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// GettextLoader is the default [Loader]. It parses GNU gettext .po and .mo
// files using github.com/leonelquinteros/gotext.
type GettextLoader struct{}

// Open loads every locale found under path for the given domain name.
//
// An empty path yields a valid catalog with no translations, so a domain can
// be registered before its translations ship. A non-empty path that cannot
// be read is an error.
func (GettextLoader) Open(name, path, charset string) (Catalog, error) {
	c := &GettextCatalog{
		name:    name,
		path:    path,
		charset: charset,
		locales: map[string]*localeEntries{},
	}

	if path == "" {
		return c, nil
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// GettextCatalog is a gettext-backed [Catalog]. All translations are loaded
// eagerly by [GettextLoader.Open]; lookups afterwards are pure map reads.
type GettextCatalog struct {
	name string
	path string

	mu      sync.RWMutex // guards charset; locales are immutable after load
	charset string

	// locales maps POSIX-form tags to their parsed translation tables.
	locales map[string]*localeEntries
}

// localeEntries holds one locale's parsed translation table and the
// plural-rule expression from its Plural-Forms header.
type localeEntries struct {
	entries map[string]*gotext.Translation
	rule    string
}

func (c *GettextCatalog) Name() string { return c.name }

// Path returns the directory the catalog was loaded from.
func (c *GettextCatalog) Path() string { return c.path }

// Charset returns the current output charset. Empty means UTF-8.
func (c *GettextCatalog) Charset() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.charset
}

func (c *GettextCatalog) SetCharset(charset string) {
	c.mu.Lock()
	c.charset = charset
	c.mu.Unlock()
}

func (c *GettextCatalog) LookupSingular(lang, msgid string) (string, bool) {
	loc := c.locale(lang)
	if loc == nil {
		return "", false
	}

	t, ok := loc.entries[msgid]
	if !ok || !t.IsTranslated() {
		return "", false
	}

	return encodeCharset(c.Charset(), t.Get()), true
}

func (c *GettextCatalog) LookupPlural(lang, msgid, msgidPlural string) (PluralEntry, bool) {
	loc := c.locale(lang)
	if loc == nil {
		return PluralEntry{}, false
	}

	t, ok := loc.entries[msgid]
	if !ok || t.PluralID == "" || !t.IsTranslated() {
		return PluralEntry{}, false
	}

	charset := c.Charset()

	var forms []string

	for i := 0; ; i++ {
		form, ok := t.Trs[i]
		if !ok {
			break
		}

		forms = append(forms, encodeCharset(charset, form))
	}

	if len(forms) == 0 {
		return PluralEntry{}, false
	}

	return PluralEntry{Forms: forms, Rule: loc.rule}, true
}

// locale returns the translation table for a POSIX-form tag, falling back to
// the base language ("pt_BR" -> "pt") when no exact entry exists.
func (c *GettextCatalog) locale(lang string) *localeEntries {
	if loc, ok := c.locales[lang]; ok {
		return loc
	}

	if i := strings.IndexByte(lang, '_'); i > 0 {
		if loc, ok := c.locales[lang[:i]]; ok {
			return loc
		}
	}

	return nil
}

// load scans the catalog path for locale files in both the flat and the GNU
// directory layout and parses everything it finds.
func (c *GettextCatalog) load() error {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog directory for domain %q: %w", c.name, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err := c.loadGNULayout(entry.Name()); err != nil {
				return err
			}

			continue
		}

		fileName := entry.Name()

		ext := filepath.Ext(fileName)
		if ext != ".po" && ext != ".mo" {
			continue
		}

		if err := c.loadLocaleFile(strings.TrimSuffix(fileName, ext), filepath.Join(c.path, fileName)); err != nil {
			return err
		}
	}

	return nil
}

// loadGNULayout looks for <path>/<locale>/LC_MESSAGES/<domain>.po or .mo.
func (c *GettextCatalog) loadGNULayout(localeName string) error {
	dir := filepath.Join(c.path, localeName, "LC_MESSAGES")

	for _, ext := range [...]string{".po", ".mo"} {
		file := filepath.Join(dir, c.name+ext)
		if _, err := os.Stat(file); err != nil {
			continue
		}

		return c.loadLocaleFile(localeName, file)
	}

	return nil
}

func (c *GettextCatalog) loadLocaleFile(localeName, file string) error {
	// Accept both underscore and hyphen locale spellings; store POSIX form.
	tag, err := language.Parse(strings.ReplaceAll(localeName, "_", "-"))
	if err != nil {
		Logger.Warn().Err(err).Str("file", file).Msg("Skipping invalid locale name")

		return nil
	}

	buf, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read catalog file for domain %q: %w", c.name, err)
	}

	var tr gotext.Translator
	if filepath.Ext(file) == ".mo" {
		tr = gotext.NewMo()
	} else {
		tr = gotext.NewPo()
	}

	tr.Parse(buf)

	domain := tr.GetDomain()

	posix := strings.ReplaceAll(tag.String(), "-", "_")
	c.locales[posix] = &localeEntries{
		entries: domain.GetTranslations(),
		rule:    pluralExpression(domain.PluralForms),
	}

	Logger.Debug().
		Str("domain", c.name).
		Str("locale", posix).
		Str("file", file).
		Msg("Loaded locale")

	return nil
}

// pluralExpression extracts the "plural=" expression from a Plural-Forms
// header such as "nplurals=2; plural=(n != 1);". Catalogs without the header
// get the English-default binary rule.
func pluralExpression(header string) string {
	const marker = "plural="

	i := strings.Index(header, marker)
	if i < 0 {
		return DefaultPluralRule
	}

	expr := header[i+len(marker):]
	if j := strings.IndexByte(expr, ';'); j >= 0 {
		expr = expr[:j]
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return DefaultPluralRule
	}

	return expr
}
