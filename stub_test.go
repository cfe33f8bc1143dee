// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain_test

import (
	"errors"
	"sync"

	"codeberg.org/lokal/textdomain/catalog"
)

// stubCatalog is an in-memory catalog that counts lookups, so tests can
// observe whether the memoization layer short-circuited a query.
type stubCatalog struct {
	name string

	mu            sync.Mutex
	charset       string
	singularCalls int
	pluralCalls   int

	// singular maps lang -> msgid -> translation.
	singular map[string]map[string]string

	// plural maps lang -> msgid -> entry.
	plural map[string]map[string]catalog.PluralEntry
}

func newStubCatalog(name string) *stubCatalog {
	return &stubCatalog{
		name:     name,
		singular: map[string]map[string]string{},
		plural:   map[string]map[string]catalog.PluralEntry{},
	}
}

func (s *stubCatalog) addSingular(lang, msgid, msg string) *stubCatalog {
	if s.singular[lang] == nil {
		s.singular[lang] = map[string]string{}
	}

	s.singular[lang][msgid] = msg

	return s
}

func (s *stubCatalog) addPlural(lang, msgid string, entry catalog.PluralEntry) *stubCatalog {
	if s.plural[lang] == nil {
		s.plural[lang] = map[string]catalog.PluralEntry{}
	}

	s.plural[lang][msgid] = entry

	return s
}

func (s *stubCatalog) Name() string { return s.name }

func (s *stubCatalog) LookupSingular(lang, msgid string) (string, bool) {
	s.mu.Lock()
	s.singularCalls++
	s.mu.Unlock()

	msg, ok := s.singular[lang][msgid]

	return msg, ok
}

func (s *stubCatalog) LookupPlural(lang, msgid, _ string) (catalog.PluralEntry, bool) {
	s.mu.Lock()
	s.pluralCalls++
	s.mu.Unlock()

	entry, ok := s.plural[lang][msgid]

	return entry, ok
}

func (s *stubCatalog) SetCharset(charset string) {
	s.mu.Lock()
	s.charset = charset
	s.mu.Unlock()
}

func (s *stubCatalog) Charset() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.charset
}

func (s *stubCatalog) SingularCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.singularCalls
}

func (s *stubCatalog) PluralCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pluralCalls
}

// stubLoader serves pre-registered stub catalogs and records Open calls.
type stubLoader struct {
	mu        sync.Mutex
	catalogs  map[string]*stubCatalog
	openCalls []openCall
	failWith  error
}

type openCall struct {
	name    string
	path    string
	charset string
}

func newStubLoader(catalogs ...*stubCatalog) *stubLoader {
	l := &stubLoader{catalogs: map[string]*stubCatalog{}}
	for _, c := range catalogs {
		l.catalogs[c.name] = c
	}

	return l
}

func (l *stubLoader) Open(name, path, charset string) (catalog.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.openCalls = append(l.openCalls, openCall{name: name, path: path, charset: charset})

	if l.failWith != nil {
		return nil, l.failWith
	}

	c, ok := l.catalogs[name]
	if !ok {
		return nil, errors.New("no such stub catalog: " + name)
	}

	c.SetCharset(charset)

	return c, nil
}

func (l *stubLoader) opens() []openCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]openCall(nil), l.openCalls...)
}

// Test fixture types exercising the embedding hierarchy.

type widget struct{}

type button struct {
	widget
}
