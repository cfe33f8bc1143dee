// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package langselect

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Provider produces an ordered candidate list of POSIX-form language tags,
// most preferred first. A nil restricted set means "no restriction"; a
// non-nil set limits candidates to tags it can be matched against.
//
// An empty result is a valid outcome and means no translation language
// applies; callers are expected to fall back to untranslated message ids.
type Provider interface {
	Candidates(restricted []string) []string
}

// Env derives preferences from the process environment, honouring the GNU
// gettext precedence: LANGUAGE (colon-separated list), then LC_ALL,
// LC_MESSAGES and LANG. The "C" and "POSIX" locales yield no candidates.
type Env struct{}

func (Env) Candidates(restricted []string) []string {
	return Narrow(envPreferences(), restricted)
}

// Static is a fixed preference list. The zero value yields no candidates.
type Static []string

func (s Static) Candidates(restricted []string) []string {
	return Narrow([]string(s), restricted)
}

// Narrow normalizes prefs to POSIX form and, when restricted is non-nil,
// maps each preference onto the best-matching restricted tag. Order follows
// prefs; duplicates are dropped.
func Narrow(prefs, restricted []string) []string {
	if restricted == nil {
		return normalize(prefs)
	}

	supported := make([]language.Tag, 0, len(restricted))

	for _, s := range restricted {
		if t, ok := parseTag(s); ok {
			supported = append(supported, t)
		}
	}

	if len(supported) == 0 {
		return nil
	}

	matcher := language.NewMatcher(supported)

	var (
		out  []string
		seen = map[string]struct{}{}
	)

	for _, p := range prefs {
		t, ok := parseTag(p)
		if !ok {
			continue
		}

		_, index, conf := matcher.Match(t)
		if conf == language.No {
			continue
		}

		tag := Posix(supported[index].String())
		if _, dup := seen[tag]; dup {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

// Posix converts a BCP 47 tag string to POSIX form: "pt-BR" -> "pt_BR".
func Posix(tag string) string {
	return strings.ReplaceAll(tag, "-", "_")
}

func normalize(prefs []string) []string {
	var (
		out  []string
		seen = map[string]struct{}{}
	)

	for _, p := range prefs {
		t, ok := parseTag(p)
		if !ok {
			continue
		}

		tag := Posix(t.String())
		if _, dup := seen[tag]; dup {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

// parseTag parses a locale string in either POSIX ("pt_BR.UTF-8@mod") or
// BCP 47 ("pt-BR") form.
func parseTag(s string) (language.Tag, bool) {
	s = strings.TrimSpace(s)

	// Strip POSIX codeset and modifier suffixes.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}

	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}

	if s == "" || s == "C" || s == "POSIX" {
		return language.Tag{}, false
	}

	t, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil || t == (language.Tag{}) {
		return language.Tag{}, false
	}

	return t, true
}

func envPreferences() []string {
	var raw []string

	if v := os.Getenv("LANGUAGE"); v != "" {
		raw = append(raw, strings.Split(v, ":")...)
	}

	for _, name := range [...]string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			raw = append(raw, v)
		}
	}

	return raw
}
